package middleware

import (
	"Lura/internal/metrics"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// WithMetrics считает запросы и задержку по шаблону маршрута chi.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{status: http.StatusOK}
		next.ServeHTTP(&loggingResponseWriter{ResponseWriter: w, data: data}, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(data.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
