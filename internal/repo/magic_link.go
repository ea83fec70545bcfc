package repo

import (
	"Lura/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MagicLinkRepository хранит одноразовые токены входа.
type MagicLinkRepository interface {
	// Upsert заменяет токен для email (один активный токен на адрес).
	Upsert(ctx context.Context, email, token string, expires time.Time) error
	GetByToken(ctx context.Context, token string) (*model.MagicLink, error)
	// DeleteByToken удаляет токен. deleted=false, если его уже кто-то использовал.
	DeleteByToken(ctx context.Context, token string) (deleted bool, err error)
}

type magicLinkRepo struct {
	db *gorm.DB
}

func NewMagicLinkRepository(db *gorm.DB) MagicLinkRepository {
	return &magicLinkRepo{db: db}
}

func (r *magicLinkRepo) Upsert(ctx context.Context, email, token string, expires time.Time) error {
	ml := &model.MagicLink{Email: email, Token: token, Expires: expires}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires"}),
	}).Create(ml).Error
}

func (r *magicLinkRepo) GetByToken(ctx context.Context, token string) (*model.MagicLink, error) {
	var ml model.MagicLink
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&ml).Error; err != nil {
		return nil, err
	}
	return &ml, nil
}

func (r *magicLinkRepo) DeleteByToken(ctx context.Context, token string) (bool, error) {
	tx := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.MagicLink{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
