package handlers

import (
	"Lura/internal/model"
	"Lura/internal/service"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type CalendarHandler struct {
	svc    *service.CalendarService
	logger *zap.SugaredLogger
}

func NewCalendarHandler(svc *service.CalendarService, logger *zap.SugaredLogger) *CalendarHandler {
	return &CalendarHandler{svc: svc, logger: logger}
}

type eventRequest struct {
	Title     *string         `json:"title"`
	Start     *time.Time      `json:"start"`
	End       *time.Time      `json:"end"`
	Notes     *string         `json:"notes"`
	Status    *string         `json:"status"`
	Reminders *model.Reminder `json:"reminders"`
}

func (req eventRequest) input() service.EventInput {
	return service.EventInput{
		Title:     req.Title,
		Start:     req.Start,
		End:       req.End,
		Notes:     req.Notes,
		Status:    req.Status,
		Reminders: req.Reminders,
	}
}

// fail: ненайденное событие — 404, своя ошибка валидации — 400 с текстом,
// прочее — 400 "Failed to <op> event".
func (h *CalendarHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrBadRequest):
		writeError(w, h.logger, r, err)
	default:
		h.logger.Errorw("calendar: "+op+" failed", "user_id", userID(r), "error", err)
		writeMessage(w, http.StatusBadRequest, "Failed to %s event", op)
	}
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, "fetch", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.Create(r.Context(), userID(r), req.input())
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := h.svc.Update(r.Context(), userID(r), id, req.input())
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID(r), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Event deleted successfully"})
}
