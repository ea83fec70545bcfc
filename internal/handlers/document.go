package handlers

import (
	"Lura/internal/config"
	"Lura/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type DocumentHandler struct {
	docs     *service.DocumentService
	comments *service.CommentService
	logger   *zap.SugaredLogger
	maxBody  int64
}

func NewDocumentHandler(docs *service.DocumentService, comments *service.CommentService, logger *zap.SugaredLogger, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{
		docs:     docs,
		comments: comments,
		logger:   logger,
		// запас на поля формы сверх лимита файла
		maxBody: int64(cfg.UploadMaxMB+1) << 20,
	}
}

type updateDocumentRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=255"`
	TagIDs []int64 `json:"tagIds"`
}

type bulkRequest struct {
	DocumentIDs []int64 `json:"documentIds" validate:"required,min=1"`
	TagIDs      []int64 `json:"tagIds"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	list, err := h.docs.List(r.Context(), userID(r), ids[0], ids[1])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Upload принимает multipart с полем file и необязательным displayName.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeMessage(w, http.StatusBadRequest, "File is too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	view, err := h.docs.Upload(r.Context(), userID(r), ids[0], ids[1], service.UploadInput{
		DisplayName:  r.FormValue("displayName"),
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Body:         file,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *DocumentHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId")
	if !ok {
		return
	}
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, err := h.docs.Bulk(r.Context(), userID(r), ids[0], ids[1], req.DocumentIDs, req.TagIDs)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	doc, err := h.docs.Get(r.Context(), userID(r), ids[0], ids[1], ids[2])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Download отдаёт файл как вложение с исходным именем.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	doc, f, err := h.docs.Download(r.Context(), userID(r), ids[0], ids[1], ids[2])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if st, err := f.Stat(); err == nil {
		modTime = st.ModTime()
	}
	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition(doc.OriginalName))
	http.ServeContent(w, r, doc.OriginalName, modTime, f)
}

func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(url.QueryEscape(name), "+", "%20"))
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	var req updateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := h.docs.Update(r.Context(), userID(r), ids[0], ids[1], ids[2], req.Name, req.TagIDs)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	if err := h.docs.Delete(r.Context(), userID(r), ids[0], ids[1], ids[2]); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Document deleted successfully"})
}

func (h *DocumentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.comments.Create(r.Context(), userID(r), ids[0], ids[1], ids[2], req.Content)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *DocumentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId")
	if !ok {
		return
	}
	list, err := h.comments.List(r.Context(), userID(r), ids[0], ids[1], ids[2])
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DocumentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId", "commentId")
	if !ok {
		return
	}
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.comments.Update(r.Context(), userID(r), ids[0], ids[1], ids[2], ids[3], req.Content)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *DocumentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "workspaceId", "caseId", "documentId", "commentId")
	if !ok {
		return
	}
	if err := h.comments.Delete(r.Context(), userID(r), ids[0], ids[1], ids[2], ids[3]); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedBody{Success: true, Message: "Comment deleted successfully"})
}
