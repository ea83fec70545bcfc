package handlers

import (
	"Lura/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorBody — формат ошибки для клиента.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorBody{StatusCode: status, Message: fmt.Sprintf(format, args...)})
}

// writeError сопоставляет ошибку сервиса со статусом. Неизвестные ошибки — 500 без подробностей.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, status, "internal error")
		return
	}
	logger.Debugw("request failed", "path", r.URL.Path, "status", status, "error", err)
	writeMessage(w, status, "%s", service.PublicMessage(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decodeJSON читает тело и проверяет теги validate. При ошибке ответ уже записан.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "%s", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// pathID разбирает числовой параметр маршрута. При ошибке ответ уже записан.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid %s format", name)
		return 0, false
	}
	return id, true
}

// pathIDs разбирает несколько параметров по порядку.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int64, bool) {
	ids := make([]int64, 0, len(names))
	for _, n := range names {
		id, ok := pathID(w, r, n)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
