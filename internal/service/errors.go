package service

import (
	"Lura/internal/policy"
	"errors"
	"fmt"
)

// Виды ошибок сервисного слоя. Хендлеры сопоставляют их с HTTP статусами через errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = policy.ErrForbidden
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error — ошибка с видом и сообщением для клиента. Err — исходная причина, если есть.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// PublicMessage возвращает сообщение для ответа клиенту.
func PublicMessage(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func badRequestf(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

func unauthorizedf(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}
