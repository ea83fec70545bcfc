package handlers

import (
	"Lura/internal/model"
	"Lura/internal/service"
	"net/http"

	"go.uber.org/zap"
)

type WorkspaceHandler struct {
	svc    *service.WorkspaceService
	logger *zap.SugaredLogger
}

func NewWorkspaceHandler(svc *service.WorkspaceService, logger *zap.SugaredLogger) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, logger: logger}
}

type createWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

type updateWorkspaceRequest struct {
	Name        *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Status      *model.WorkspaceStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
}

type addUserRequest struct {
	Email string              `json:"email" validate:"required,email"`
	Role  model.WorkspaceRole `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER"`
}

type deletedBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.svc.Create(r.Context(), userID(r), service.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	ws, err := h.svc.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req updateWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.svc.Update(r.Context(), userID(r), id, service.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Workspace deleted successfully"})
}

func (h *WorkspaceHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req addUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	member, err := h.svc.AddUser(r.Context(), userID(r), id, req.Email, req.Role)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *WorkspaceHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	members, err := h.svc.ListUsers(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *WorkspaceHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "userId")
	if !ok {
		return
	}
	if err := h.svc.RemoveUser(r.Context(), userID(r), ids[0], ids[1]); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "User removed from workspace"})
}
