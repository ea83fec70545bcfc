package repo

import (
	"Lura/internal/model"
	"context"

	"gorm.io/gorm"
)

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id int64) (*model.Tag, error)
	// ListByWorkspace возвращает теги по имени.
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Tag, error)
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) Create(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepo) GetByID(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tagRepo) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Order("name ASC, id ASC").Find(&tags).Error
	return tags, err
}
