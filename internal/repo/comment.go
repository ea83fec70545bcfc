package repo

import (
	"Lura/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListByDocument возвращает комментарии документа, старые первыми.
	ListByDocument(ctx context.Context, documentID int64) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByDocument(ctx context.Context, documentID int64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *commentRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
