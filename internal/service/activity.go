package service

import (
	"Lura/internal/metrics"
	"Lura/internal/model"
	"Lura/internal/repo"
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// RecentActivityLimit — сколько записей отдаёт GET /activity.
const RecentActivityLimit = 20

// ActivityService пишет журнал активности. Запись журнала — побочный эффект:
// ошибка записи логируется и не ломает основной запрос.
type ActivityService struct {
	repo   repo.ActivityRepository
	logger *zap.SugaredLogger
}

func NewActivityService(r repo.ActivityRepository, logger *zap.SugaredLogger) *ActivityService {
	return &ActivityService{repo: r, logger: logger}
}

// Record добавляет запись. eventID != nil заполняет индексируемую колонку event_id.
func (s *ActivityService) Record(ctx context.Context, userID int64, activityType, description string, eventID *int64, meta map[string]any) {
	a := &model.Activity{
		Type:        activityType,
		Description: description,
		UserID:      userID,
		EventID:     eventID,
	}
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			s.logger.Warnw("Activity: marshal metadata", "type", activityType, "error", err)
		} else {
			a.Metadata = datatypes.JSON(b)
		}
	}
	if err := s.repo.Create(ctx, a); err != nil {
		metrics.AuditFailures.Inc()
		s.logger.Errorw("Activity: write failed", "type", activityType, "user_id", userID, "error", err)
	}
}

// Recent возвращает последние записи пользователя, новые первыми.
func (s *ActivityService) Recent(ctx context.Context, userID int64) ([]model.Activity, error) {
	list, err := s.repo.ListRecent(ctx, userID, RecentActivityLimit)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Activity{}
	}
	return list, nil
}

// HasEventActivity проверяет, была ли уже запись данного типа по событию.
func (s *ActivityService) HasEventActivity(ctx context.Context, activityType string, userID, eventID int64) (bool, error) {
	return s.repo.ExistsForEvent(ctx, activityType, userID, eventID)
}
