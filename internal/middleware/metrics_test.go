package middleware

import (
	"Lura/internal/metrics"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Тест: счётчик помечается шаблоном маршрута, а не сырым путём
func TestWithMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(WithMetrics)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "202"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status passthrough failed: got %d", rr.Code)
	}
	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "202"))
	if after-before != 1 {
		t.Fatalf("expected counter +1, got %v", after-before)
	}
}
