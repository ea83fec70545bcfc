package repo

import (
	"Lura/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalendarRepository — события календаря пользователей.
type CalendarRepository interface {
	Create(ctx context.Context, e *model.CalendarEvent) error
	// GetForUser возвращает событие, только если оно принадлежит пользователю.
	GetForUser(ctx context.Context, id, userID int64) (*model.CalendarEvent, error)
	// ListByUser возвращает события пользователя по времени начала.
	ListByUser(ctx context.Context, userID int64) ([]model.CalendarEvent, error)
	Save(ctx context.Context, e *model.CalendarEvent) error
	DeleteForUser(ctx context.Context, id, userID int64) error
	// ListWithReminders возвращает события с настроенными напоминаниями вместе с пользователем.
	ListWithReminders(ctx context.Context) ([]model.CalendarEvent, error)
}

type calendarRepo struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepo{db: db}
}

func (r *calendarRepo) Create(ctx context.Context, e *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *calendarRepo) GetForUser(ctx context.Context, id, userID int64) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *calendarRepo) ListByUser(ctx context.Context, userID int64) ([]model.CalendarEvent, error) {
	var list []model.CalendarEvent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("start ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *calendarRepo) Save(ctx context.Context, e *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (r *calendarRepo) DeleteForUser(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.CalendarEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *calendarRepo) ListWithReminders(ctx context.Context) ([]model.CalendarEvent, error) {
	var list []model.CalendarEvent
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("reminders IS NOT NULL").
		Order("start ASC, id ASC").
		Find(&list).Error
	return list, err
}
