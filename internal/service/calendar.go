package service

import (
	"Lura/internal/model"
	"Lura/internal/repo"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EventInput — поля события; nil означает «не менять» при обновлении.
type EventInput struct {
	Title     *string
	Start     *time.Time
	End       *time.Time
	Notes     *string
	Status    *string
	Reminders *model.Reminder
}

// CalendarService — личный календарь пользователя. Чужие события не видны (404).
type CalendarService struct {
	events   repo.CalendarRepository
	activity *ActivityService
	logger   *zap.SugaredLogger
}

func NewCalendarService(events repo.CalendarRepository, activity *ActivityService, logger *zap.SugaredLogger) *CalendarService {
	return &CalendarService{events: events, activity: activity, logger: logger}
}

func (s *CalendarService) List(ctx context.Context, userID int64) ([]model.CalendarEvent, error) {
	list, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.CalendarEvent{}
	}
	return list, nil
}

func (s *CalendarService) Create(ctx context.Context, userID int64, in EventInput) (*model.CalendarEvent, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Start == nil || in.Start.IsZero() {
		return nil, badRequestf("Title and start time are required")
	}
	e := &model.CalendarEvent{
		Title:  strings.TrimSpace(*in.Title),
		Start:  *in.Start,
		End:    in.End,
		UserID: userID,
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	if err := e.SetReminderConfig(in.Reminders); err != nil {
		return nil, &Error{Kind: ErrBadRequest, Message: "invalid reminders", Err: err}
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityCalendarEventCreated, "Created calendar event: "+e.Title, &e.ID,
		map[string]any{"eventId": e.ID})
	return e, nil
}

// Update выполняет частичное обновление собственного события.
func (s *CalendarService) Update(ctx context.Context, userID, eventID int64, in EventInput) (*model.CalendarEvent, error) {
	e, err := s.events.GetForUser(ctx, eventID, userID)
	if err != nil {
		return nil, notFoundOr(err, "Event not found")
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, badRequestf("title must not be empty")
		}
		e.Title = title
	}
	if in.Start != nil && !in.Start.IsZero() {
		e.Start = *in.Start
	}
	if in.End != nil {
		e.End = in.End
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.Status != nil && *in.Status != "" {
		e.Status = *in.Status
	}
	if in.Reminders != nil {
		if err := e.SetReminderConfig(in.Reminders); err != nil {
			return nil, &Error{Kind: ErrBadRequest, Message: "invalid reminders", Err: err}
		}
	}
	if err := s.events.Save(ctx, e); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityCalendarEventUpdated, "Updated calendar event: "+e.Title, &e.ID,
		map[string]any{"eventId": e.ID})
	return e, nil
}

func (s *CalendarService) Delete(ctx context.Context, userID, eventID int64) error {
	e, err := s.events.GetForUser(ctx, eventID, userID)
	if err != nil {
		return notFoundOr(err, "Event not found")
	}
	if err := s.events.DeleteForUser(ctx, eventID, userID); err != nil {
		return notFoundOr(err, "Event not found")
	}
	s.activity.Record(ctx, userID, model.ActivityCalendarEventDeleted, "Deleted calendar event: "+e.Title, &eventID,
		map[string]any{"eventId": eventID})
	return nil
}
