package handlers

import (
	"Lura/internal/service"
	"net/http"

	"go.uber.org/zap"
)

type ActivityHandler struct {
	svc    *service.ActivityService
	logger *zap.SugaredLogger
}

func NewActivityHandler(svc *service.ActivityService, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// Recent отдаёт последние действия текущего пользователя.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Recent(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
