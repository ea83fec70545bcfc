package service

import (
	"Lura/internal/locker"
	"Lura/internal/mailer"
	"Lura/internal/metrics"
	"Lura/internal/model"
	"Lura/internal/repo"
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Статусы отправки письма в журнале напоминаний.
const (
	EmailSent    = "sent"
	EmailFailed  = "failed"
	EmailNotSent = "not sent"
)

const DefaultReminderInterval = 5 * time.Minute

// ReminderNotifier периодически рассылает напоминания о событиях и уведомления о просрочке.
type ReminderNotifier struct {
	events   repo.CalendarRepository
	activity *ActivityService
	mail     mailer.Sender
	lock     locker.Locker
	interval time.Duration
	logger   *zap.SugaredLogger
}

// NewReminderNotifier; lock == nil — без межрепликовой блокировки.
func NewReminderNotifier(
	events repo.CalendarRepository,
	activity *ActivityService,
	mail mailer.Sender,
	lock locker.Locker,
	interval time.Duration,
	logger *zap.SugaredLogger,
) *ReminderNotifier {
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	if lock == nil {
		lock = locker.Noop{}
	}
	return &ReminderNotifier{
		events:   events,
		activity: activity,
		mail:     mail,
		lock:     lock,
		interval: interval,
		logger:   logger,
	}
}

// Run тикает до отмены контекста.
func (n *ReminderNotifier) Run(ctx context.Context) error {
	n.logger.Infow("Reminder notifier started", "interval", n.interval.String())
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n.logger.Infow("Reminder notifier stopped")
			return nil
		case t := <-ticker.C:
			if err := n.Tick(ctx, t); err != nil {
				n.logger.Errorw("Reminder tick failed", "error", err)
			}
		}
	}
}

// window — ширина окна срабатывания в минутах, равна интервалу тиков.
func (n *ReminderNotifier) window() int {
	w := int(n.interval / time.Minute)
	if w < 1 {
		w = 1
	}
	return w
}

// Tick делает один проход по событиям с напоминаниями.
func (n *ReminderNotifier) Tick(ctx context.Context, now time.Time) error {
	key := fmt.Sprintf("lura:reminders:%d", now.Truncate(n.interval).Unix())
	ok, err := n.lock.Acquire(ctx, key, n.interval)
	if err != nil {
		metrics.ReminderTicks.WithLabelValues("error").Inc()
		return fmt.Errorf("acquire tick lock: %w", err)
	}
	if !ok {
		metrics.ReminderTicks.WithLabelValues("skipped").Inc()
		n.logger.Debugw("Reminder tick taken by another replica", "key", key)
		return nil
	}

	events, err := n.events.ListWithReminders(ctx)
	if err != nil {
		metrics.ReminderTicks.WithLabelValues("error").Inc()
		return fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		n.processEvent(ctx, &events[i], now)
	}
	metrics.ReminderTicks.WithLabelValues("done").Inc()
	return nil
}

func (n *ReminderNotifier) processEvent(ctx context.Context, e *model.CalendarEvent, now time.Time) {
	cfg, err := e.ReminderConfig()
	if err != nil {
		n.logger.Warnw("Reminder: bad reminders json", "event_id", e.ID, "error", err)
		return
	}
	if cfg == nil || !cfg.Enabled {
		return
	}

	minutesUntil := int(math.Floor(e.Start.Sub(now).Minutes()))
	window := n.window()
	for _, offset := range cfg.Times {
		if minutesUntil <= offset && minutesUntil > offset-window {
			n.remind(ctx, e, cfg, offset)
		}
	}

	if e.Status == model.EventStatusScheduled && e.Start.Before(now) {
		n.expire(ctx, e, cfg)
	}
}

func (n *ReminderNotifier) remind(ctx context.Context, e *model.CalendarEvent, cfg *model.Reminder, offset int) {
	before := formatReminderTime(offset)
	status, emailErr := n.send(ctx, e, cfg, func(to string) mailer.Message {
		return mailer.ReminderMessage(to, eventInfo(e), before)
	})
	metrics.CalendarNotices.WithLabelValues(model.ActivityCalendarReminder, status).Inc()

	desc := fmt.Sprintf("Reminder: %s in %s (email: %s%s)", e.Title, before, status, errSuffix(emailErr))
	n.activity.Record(ctx, e.UserID, model.ActivityCalendarReminder, desc, &e.ID, map[string]any{
		"eventId":      e.ID,
		"reminderTime": offset,
		"emailStatus":  status,
		"emailError":   emailErr,
	})
}

// expire шлёт одно уведомление о просрочке на событие.
func (n *ReminderNotifier) expire(ctx context.Context, e *model.CalendarEvent, cfg *model.Reminder) {
	done, err := n.activity.HasEventActivity(ctx, model.ActivityCalendarEventExpired, e.UserID, e.ID)
	if err != nil {
		n.logger.Errorw("Reminder: expiry lookup failed", "event_id", e.ID, "error", err)
		return
	}
	if done {
		return
	}
	status, emailErr := n.send(ctx, e, cfg, func(to string) mailer.Message {
		return mailer.ExpiredMessage(to, eventInfo(e))
	})
	metrics.CalendarNotices.WithLabelValues(model.ActivityCalendarEventExpired, status).Inc()

	desc := fmt.Sprintf("Event expired: %s (email: %s%s)", e.Title, status, errSuffix(emailErr))
	n.activity.Record(ctx, e.UserID, model.ActivityCalendarEventExpired, desc, &e.ID, map[string]any{
		"eventId":     e.ID,
		"emailStatus": status,
		"emailError":  emailErr,
	})
}

// send отправляет письмо, если оно включено и у пользователя есть адрес.
func (n *ReminderNotifier) send(ctx context.Context, e *model.CalendarEvent, cfg *model.Reminder, build func(to string) mailer.Message) (string, *string) {
	if !cfg.EmailEnabled || e.User == nil || e.User.Email == "" {
		return EmailNotSent, nil
	}
	if err := n.mail.Send(ctx, build(e.User.Email)); err != nil {
		n.logger.Errorw("Reminder: email failed", "event_id", e.ID, "to", e.User.Email, "error", err)
		msg := err.Error()
		return EmailFailed, &msg
	}
	n.logger.Infow("Reminder: email sent", "event_id", e.ID, "to", e.User.Email)
	return EmailSent, nil
}

func eventInfo(e *model.CalendarEvent) mailer.EventInfo {
	return mailer.EventInfo{Title: e.Title, Start: e.Start, Notes: e.Notes}
}

func errSuffix(msg *string) string {
	if msg == nil {
		return ""
	}
	return ", error: " + *msg
}

// formatReminderTime: 10 → "10 minutes", 60 → "1 hour", 2880 → "2 days".
func formatReminderTime(minutes int) string {
	plural := func(n int, unit string) string {
		if n > 1 {
			return fmt.Sprintf("%d %ss", n, unit)
		}
		return fmt.Sprintf("%d %s", n, unit)
	}
	switch {
	case minutes >= 1440:
		return plural(minutes/1440, "day")
	case minutes >= 60:
		return plural(minutes/60, "hour")
	default:
		return plural(minutes, "minute")
	}
}
