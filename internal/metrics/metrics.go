// Package metrics — prometheus коллекторы сервера.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lura_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lura_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// CalendarNotices — напоминания и уведомления о просрочке; status: sent, failed, not sent
	CalendarNotices = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lura_calendar_notices_total",
		Help: "Calendar reminder and expiry notices by type and email status",
	}, []string{"type", "status"})

	ReminderTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lura_reminder_ticks_total",
		Help: "Reminder notifier ticks by outcome (done, skipped, error)",
	}, []string{"outcome"})

	AuditFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lura_activity_write_failures_total",
		Help: "Activity log writes that failed",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration,
		CalendarNotices, ReminderTicks,
		AuditFailures,
	)
}
