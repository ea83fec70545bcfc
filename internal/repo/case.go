package repo

import (
	"Lura/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrTagNotFound: тег из запроса не существует.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagForeign: тег принадлежит другому workspace.
	ErrTagForeign = errors.New("tag belongs to another workspace")
)

// CaseRepository — кейсы и их теги.
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id int64) (*model.Case, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Case, error)
	// Update обновляет поля кейса. Если tagIDs != nil (в том числе пустой), связи с тегами
	// пересоздаются. Всё в одной транзакции: ошибка по любому тегу откатывает изменения.
	Update(ctx context.Context, id, workspaceID int64, updates map[string]any, tagIDs []int64) error
	// Delete каскадно удаляет кейс с документами; возвращает пути файлов.
	Delete(ctx context.Context, id int64) ([]string, error)

	ListTags(ctx context.Context, caseID int64) ([]model.Tag, error)
	HasTag(ctx context.Context, caseID, tagID int64) (bool, error)
	AddTag(ctx context.Context, caseID, tagID int64) error
	RemoveTag(ctx context.Context, caseID, tagID int64) (bool, error)
}

type caseRepo struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) Create(ctx context.Context, c *model.Case) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *caseRepo) GetByID(ctx context.Context, id int64) (*model.Case, error) {
	var c model.Case
	if err := r.db.WithContext(ctx).Preload("Tags").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepo) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Case, error) {
	var list []model.Case
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("workspace_id = ?", workspaceID).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *caseRepo) Update(ctx context.Context, id, workspaceID int64, updates map[string]any, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			res := tx.Model(&model.Case{}).Where("id = ?", id).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if tagIDs == nil {
			return nil
		}
		if err := tx.Where("case_id = ?", id).Delete(&model.CaseTag{}).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := checkTag(tx, tagID, workspaceID); err != nil {
				return err
			}
			link := &model.CaseTag{CaseID: id, TagID: tagID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// checkTag проверяет, что тег существует и принадлежит workspace.
func checkTag(tx *gorm.DB, tagID, workspaceID int64) error {
	var tag model.Tag
	if err := tx.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrTagNotFound, tagID)
		}
		return err
	}
	if tag.WorkspaceID != workspaceID {
		return fmt.Errorf("%w: %d", ErrTagForeign, tagID)
	}
	return nil
}

func (r *caseRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Case{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return gorm.ErrRecordNotFound
		}
		p, err := deleteCaseContents(tx, []int64{id})
		paths = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *caseRepo) ListTags(ctx context.Context, caseID int64) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN case_tags ct ON ct.tag_id = tags.id").
		Where("ct.case_id = ?", caseID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *caseRepo) HasTag(ctx context.Context, caseID, tagID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.CaseTag{}).
		Where("case_id = ? AND tag_id = ?", caseID, tagID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *caseRepo) AddTag(ctx context.Context, caseID, tagID int64) error {
	return r.db.WithContext(ctx).Create(&model.CaseTag{CaseID: caseID, TagID: tagID}).Error
}

func (r *caseRepo) RemoveTag(ctx context.Context, caseID, tagID int64) (bool, error) {
	tx := r.db.WithContext(ctx).Where("case_id = ? AND tag_id = ?", caseID, tagID).Delete(&model.CaseTag{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
