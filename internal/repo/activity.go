package repo

import (
	"Lura/internal/model"
	"context"

	"gorm.io/gorm"
)

// ActivityRepository — журнал активности, только добавление.
type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	// ListRecent возвращает последние записи пользователя, новые первыми.
	ListRecent(ctx context.Context, userID int64, limit int) ([]model.Activity, error)
	// ExistsForEvent ищет запись заданного типа по индексированному event_id.
	ExistsForEvent(ctx context.Context, activityType string, userID, eventID int64) (bool, error)
}

type activityRepo struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, a *model.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *activityRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]model.Activity, error) {
	var list []model.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *activityRepo) ExistsForEvent(ctx context.Context, activityType string, userID, eventID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Activity{}).
		Where("type = ? AND user_id = ? AND event_id = ?", activityType, userID, eventID).
		Count(&cnt).Error
	return cnt > 0, err
}
