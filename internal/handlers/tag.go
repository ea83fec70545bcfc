package handlers

import (
	"Lura/internal/service"
	"net/http"

	"go.uber.org/zap"
)

type TagHandler struct {
	svc    *service.TagService
	logger *zap.SugaredLogger
}

func NewTagHandler(svc *service.TagService, logger *zap.SugaredLogger) *TagHandler {
	return &TagHandler{svc: svc, logger: logger}
}

type createTagRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"required,hexcolor"`
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	tags, err := h.svc.List(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req createTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.svc.Create(r.Context(), userID(r), id, req.Name, req.Color)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}
