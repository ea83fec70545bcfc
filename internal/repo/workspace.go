package repo

import (
	"Lura/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkspaceRepository — workspace и членство в нём.
type WorkspaceRepository interface {
	// Create создаёт workspace и членство владельца OWNER в одной транзакции.
	Create(ctx context.Context, ws *model.Workspace) error
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	// GetWithMembers подгружает владельца и участников.
	GetWithMembers(ctx context.Context, id int64) (*model.Workspace, error)
	ListOwned(ctx context.Context, userID int64) ([]model.Workspace, error)
	// ListShared возвращает workspace, где пользователь участник, но не владелец.
	ListShared(ctx context.Context, userID int64) ([]model.Workspace, error)
	CountMembers(ctx context.Context, ids []int64) (map[int64]int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	// Delete каскадно удаляет всё содержимое workspace и возвращает пути файлов удалённых документов.
	Delete(ctx context.Context, id int64) ([]string, error)

	GetMembership(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceUser, error)
	ListMembers(ctx context.Context, workspaceID int64) ([]model.WorkspaceUser, error)
	// UpsertMember добавляет участника или меняет роль существующего.
	UpsertMember(ctx context.Context, workspaceID, userID int64, role model.WorkspaceRole) (*model.WorkspaceUser, error)
	RemoveMember(ctx context.Context, workspaceID, userID int64) (bool, error)
}

type workspaceRepo struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(ws).Error; err != nil {
			return err
		}
		owner := &model.WorkspaceUser{WorkspaceID: ws.ID, UserID: ws.OwnerID, Role: model.WorkspaceRoleOwner}
		return tx.Create(owner).Error
	})
}

func (r *workspaceRepo) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	var ws model.Workspace
	if err := r.db.WithContext(ctx).First(&ws, id).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) GetWithMembers(ctx context.Context, id int64) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Users", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Users.User").
		First(&ws, id).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) ListOwned(ctx context.Context, userID int64) ([]model.Workspace, error) {
	var list []model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *workspaceRepo) ListShared(ctx context.Context, userID int64) ([]model.Workspace, error) {
	var list []model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN workspace_users wu ON wu.workspace_id = workspaces.id").
		Where("wu.user_id = ? AND workspaces.owner_id <> ?", userID, userID).
		Order("workspaces.created_at DESC, workspaces.id DESC").
		Find(&list).Error
	return list, err
}

func (r *workspaceRepo) CountMembers(ctx context.Context, ids []int64) (map[int64]int64, error) {
	res := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var rows []struct {
		WorkspaceID int64
		Cnt         int64
	}
	err := r.db.WithContext(ctx).Model(&model.WorkspaceUser{}).
		Select("workspace_id, COUNT(*) AS cnt").
		Where("workspace_id IN ?", ids).
		Group("workspace_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		res[row.WorkspaceID] = row.Cnt
	}
	return res, nil
}

func (r *workspaceRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Workspace{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workspaceRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var caseIDs []int64
		if err := tx.Model(&model.Case{}).Where("workspace_id = ?", id).Pluck("id", &caseIDs).Error; err != nil {
			return err
		}
		docPaths, err := deleteCaseContents(tx, caseIDs)
		if err != nil {
			return err
		}
		paths = docPaths

		var tagIDs []int64
		if err := tx.Model(&model.Tag{}).Where("workspace_id = ?", id).Pluck("id", &tagIDs).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			if err := tx.Where("tag_id IN ?", tagIDs).Delete(&model.CaseTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tag_id IN ?", tagIDs).Delete(&model.DocumentTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", tagIDs).Delete(&model.Tag{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&model.WorkspaceUser{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Workspace{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// deleteCaseContents удаляет документы, комментарии, связи с тегами и сами кейсы.
// Вызывается внутри транзакции.
func deleteCaseContents(tx *gorm.DB, caseIDs []int64) ([]string, error) {
	if len(caseIDs) == 0 {
		return nil, nil
	}
	var docs []model.Document
	if err := tx.Select("id", "path").Where("case_id IN ?", caseIDs).Find(&docs).Error; err != nil {
		return nil, err
	}
	docIDs := make([]int64, 0, len(docs))
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		docIDs = append(docIDs, d.ID)
		paths = append(paths, d.Path)
	}
	if len(docIDs) > 0 {
		if err := tx.Where("document_id IN ?", docIDs).Delete(&model.Comment{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("document_id IN ?", docIDs).Delete(&model.DocumentTag{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("id IN ?", docIDs).Delete(&model.Document{}).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Where("case_id IN ?", caseIDs).Delete(&model.CaseTag{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", caseIDs).Delete(&model.Case{}).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *workspaceRepo) GetMembership(ctx context.Context, workspaceID, userID int64) (*model.WorkspaceUser, error) {
	var m model.WorkspaceUser
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *workspaceRepo) ListMembers(ctx context.Context, workspaceID int64) ([]model.WorkspaceUser, error) {
	var list []model.WorkspaceUser
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *workspaceRepo) UpsertMember(ctx context.Context, workspaceID, userID int64, role model.WorkspaceRole) (*model.WorkspaceUser, error) {
	m := &model.WorkspaceUser{WorkspaceID: workspaceID, UserID: userID, Role: role}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"role": role}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}
	var out model.WorkspaceUser
	err = r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *workspaceRepo) RemoveMember(ctx context.Context, workspaceID, userID int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&model.WorkspaceUser{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
