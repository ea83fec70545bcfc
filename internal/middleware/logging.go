package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// SetLogger задаёт логгер для мидлварей.
func SetLogger(l *zap.SugaredLogger) {
	log = l
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (w *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := w.ResponseWriter.Write(b)
	w.data.size += size
	return size, err
}

func (w *loggingResponseWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.status = statusCode
}

// WithLogging логирует метод, путь, статус, размер ответа и длительность.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		data := &responseData{status: http.StatusOK}
		lw := &loggingResponseWriter{ResponseWriter: w, data: data}

		next.ServeHTTP(lw, r)

		if log == nil {
			return
		}
		log.Infow("request",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", data.status,
			"size", data.size,
			"duration", time.Since(start),
		)
	})
}
