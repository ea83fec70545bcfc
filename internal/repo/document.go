package repo

import (
	"Lura/internal/model"
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository — метаданные документов и их теги.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	// GetByID подгружает теги и загрузившего пользователя.
	GetByID(ctx context.Context, id int64) (*model.Document, error)
	// GetDetailed дополнительно подгружает комментарии (старые первыми).
	GetDetailed(ctx context.Context, id int64) (*model.Document, error)
	// ListByCase возвращает документы кейса, новые первыми.
	ListByCase(ctx context.Context, caseID int64) ([]model.Document, error)
	// Update меняет имя; теги заменяются только при непустом tagIDs.
	Update(ctx context.Context, id int64, name string, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	// AddTags добавляет недостающие связи, существующие не трогает.
	AddTags(ctx context.Context, docIDs, tagIDs []int64) error

	ListByPathPrefix(ctx context.Context, prefix string) ([]model.Document, error)
	UpdatePath(ctx context.Context, id int64, path string) error
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*model.Document, error) {
	var d model.Document
	if err := r.db.WithContext(ctx).Preload("Tags").Preload("User").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) GetDetailed(ctx context.Context, id int64) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.User").
		First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) ListByCase(ctx context.Context, caseID int64) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		Where("case_id = ?", caseID).
		Order("created_at DESC, id DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) Update(ctx context.Context, id int64, name string, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Document{}).Where("id = ?", id).Update("name", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if len(tagIDs) == 0 {
			return nil
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentTag{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(docTagLinks([]int64{id}, tagIDs)).Error
	})
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Document{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *documentRepo) AddTags(ctx context.Context, docIDs, tagIDs []int64) error {
	links := docTagLinks(docIDs, tagIDs)
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(links).Error
}

func docTagLinks(docIDs, tagIDs []int64) []model.DocumentTag {
	links := make([]model.DocumentTag, 0, len(docIDs)*len(tagIDs))
	for _, d := range docIDs {
		for _, t := range tagIDs {
			links = append(links, model.DocumentTag{DocumentID: d, TagID: t})
		}
	}
	return links
}

func (r *documentRepo) ListByPathPrefix(ctx context.Context, prefix string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("path LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) UpdatePath(ctx context.Context, id int64, path string) error {
	res := r.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Update("path", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// escapeLike экранирует спецсимволы LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
