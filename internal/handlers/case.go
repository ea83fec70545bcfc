package handlers

import (
	"Lura/internal/model"
	"Lura/internal/service"
	"net/http"

	"go.uber.org/zap"
)

type CaseHandler struct {
	cases  *service.CaseService
	tags   *service.CaseTagService
	logger *zap.SugaredLogger
}

func NewCaseHandler(cases *service.CaseService, tags *service.CaseTagService, logger *zap.SugaredLogger) *CaseHandler {
	return &CaseHandler{cases: cases, tags: tags, logger: logger}
}

type createCaseRequest struct {
	Title       string             `json:"title" validate:"required,max=300"`
	Description string             `json:"description"`
	Status      model.CaseStatus   `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS CLOSED"`
	Priority    model.CasePriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
}

// updateCaseRequest; TagIDs — указатель, чтобы отличить отсутствующее поле от [].
type updateCaseRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1,max=300"`
	Description *string             `json:"description"`
	Status      *model.CaseStatus   `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS CLOSED"`
	Priority    *model.CasePriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	TagIDs      *[]int64            `json:"tagIds"`
}

func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	wsID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	var req createCaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.cases.Create(r.Context(), userID(r), wsID, service.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	wsID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	list, err := h.cases.List(r.Context(), userID(r), wsID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	c, err := h.cases.Get(r.Context(), userID(r), ids[0], ids[1])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	var req updateCaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := service.UpdateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.TagIDs != nil {
		in.TagIDs = append([]int64{}, *req.TagIDs...)
	}
	c, err := h.cases.Update(r.Context(), userID(r), ids[0], ids[1], in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	if err := h.cases.Delete(r.Context(), userID(r), ids[0], ids[1]); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Case deleted successfully"})
}

func (h *CaseHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	tags, err := h.tags.List(r.Context(), userID(r), ids[0], ids[1])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *CaseHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "tagId")
	if !ok {
		return
	}
	tag, err := h.tags.Add(r.Context(), userID(r), ids[0], ids[1], ids[2])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *CaseHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "tagId")
	if !ok {
		return
	}
	if err := h.tags.Remove(r.Context(), userID(r), ids[0], ids[1], ids[2]); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Tag removed from case"})
}
