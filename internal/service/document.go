package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"Lura/internal/storage"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const defaultMimeType = "application/octet-stream"

// DocumentPermissions — флаги доступа текущего пользователя к документу.
type DocumentPermissions struct {
	CanView    bool `json:"canView"`
	CanEdit    bool `json:"canEdit"`
	CanDelete  bool `json:"canDelete"`
	IsUploader bool `json:"isUploader"`
}

// DocumentView — документ для списка.
type DocumentView struct {
	model.Document
	CanEdit     bool                `json:"canEdit"`
	CanDelete   bool                `json:"canDelete"`
	Permissions DocumentPermissions `json:"permissions"`
}

// DocumentDetail — документ с комментариями и ролью пользователя.
type DocumentDetail struct {
	DocumentView
	UserRole model.WorkspaceRole `json:"userRole"`
	IsOwner  bool                `json:"isOwner"`
}

// UploadInput — загружаемый файл. DisplayName необязателен.
type UploadInput struct {
	DisplayName  string
	OriginalName string
	MimeType     string
	Body         io.Reader
}

// DocumentService — документы кейса. Каждая операция проверяет цепочку
// workspace → case (404, затем 403) → document (404, затем 403).
type DocumentService struct {
	cases    repo.CaseRepository
	docs     repo.DocumentRepository
	tags     repo.TagRepository
	auth     *Authorizer
	activity *ActivityService
	store    storage.Store
	logger   *zap.SugaredLogger
}

func NewDocumentService(
	cases repo.CaseRepository,
	docs repo.DocumentRepository,
	tags repo.TagRepository,
	auth *Authorizer,
	activity *ActivityService,
	store storage.Store,
	logger *zap.SugaredLogger,
) *DocumentService {
	return &DocumentService{
		cases:    cases,
		docs:     docs,
		tags:     tags,
		auth:     auth,
		activity: activity,
		store:    store,
		logger:   logger,
	}
}

// scope — результат проверки доступа к кейсу.
type scope struct {
	workspace  *model.Workspace
	membership *model.WorkspaceUser
	caseItem   *model.Case
}

func (s *DocumentService) requireCase(ctx context.Context, userID, workspaceID, caseID int64, action policy.Action) (*scope, error) {
	return requireCase(ctx, s.auth, s.cases, userID, workspaceID, caseID, action)
}

func requireCase(ctx context.Context, auth *Authorizer, cases repo.CaseRepository, userID, workspaceID, caseID int64, action policy.Action) (*scope, error) {
	ws, m, err := auth.Require(ctx, userID, workspaceID, action)
	if err != nil {
		return nil, err
	}
	c, err := cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, notFoundOr(err, "Case with ID %d not found", caseID)
	}
	if c.WorkspaceID != workspaceID {
		return nil, forbiddenf("This case does not belong to the specified workspace")
	}
	return &scope{workspace: ws, membership: m, caseItem: c}, nil
}

func (s *DocumentService) documentInCase(ctx context.Context, caseID, documentID int64, detailed bool) (*model.Document, error) {
	var (
		doc *model.Document
		err error
	)
	if detailed {
		doc, err = s.docs.GetDetailed(ctx, documentID)
	} else {
		doc, err = s.docs.GetByID(ctx, documentID)
	}
	if err != nil {
		return nil, notFoundOr(err, "Document with ID %d not found", documentID)
	}
	if doc.CaseID != caseID {
		return nil, forbiddenf("Document with ID %d does not belong to the specified case", documentID)
	}
	return doc, nil
}

// checkTags: каждый тег должен существовать и принадлежать workspace.
func (s *DocumentService) checkTags(ctx context.Context, workspaceID int64, tagIDs []int64) error {
	for _, id := range tagIDs {
		tag, err := s.tags.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Tag with ID %d not found", id)
		}
		if tag.WorkspaceID != workspaceID {
			return forbiddenf("Tag with ID %d does not belong to the specified workspace", id)
		}
	}
	return nil
}

func (s *DocumentService) view(sc *scope, doc model.Document, userID int64) DocumentView {
	if doc.Tags == nil {
		doc.Tags = []model.Tag{}
	}
	canEdit := policy.CanEditDocument(sc.membership)
	canDelete := policy.CanDeleteDocument(sc.membership, &doc, userID)
	return DocumentView{
		Document:  doc,
		CanEdit:   canEdit,
		CanDelete: canDelete,
		Permissions: DocumentPermissions{
			CanView:    true,
			CanEdit:    canEdit,
			CanDelete:  canDelete,
			IsUploader: doc.UserID == userID,
		},
	}
}

// List возвращает документы кейса, новые первыми.
func (s *DocumentService) List(ctx context.Context, userID, workspaceID, caseID int64) ([]DocumentView, error) {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.view(sc, d, userID))
	}
	return out, nil
}

func (s *DocumentService) Get(ctx context.Context, userID, workspaceID, caseID, documentID int64) (*DocumentDetail, error) {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentInCase(ctx, caseID, documentID, true)
	if err != nil {
		return nil, err
	}
	if doc.Comments == nil {
		doc.Comments = []model.Comment{}
	}
	return &DocumentDetail{
		DocumentView: s.view(sc, *doc, userID),
		UserRole:     sc.membership.Role,
		IsOwner:      sc.workspace.OwnerID == userID,
	}, nil
}

// displayName — имя документа: обрезанное, при пустом — исходное имя файла.
func displayName(name, original string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = original
	}
	return strings.ToValidUTF8(name, "\uFFFD")
}

// Upload сохраняет файл и создаёт запись. Если запись не создана, файл удаляется.
func (s *DocumentService) Upload(ctx context.Context, userID, workspaceID, caseID int64, in UploadInput) (*DocumentView, error) {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionCreate)
	if err != nil {
		return nil, err
	}
	if in.Body == nil || in.OriginalName == "" {
		return nil, badRequestf("No file uploaded")
	}

	path, size, err := s.store.Save(ctx, in.OriginalName, in.Body)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, &Error{Kind: ErrBadRequest, Message: "File is too large", Err: err}
		}
		return nil, err
	}

	mime := in.MimeType
	if mime == "" {
		mime = defaultMimeType
	}
	doc := &model.Document{
		Name:         displayName(in.DisplayName, in.OriginalName),
		OriginalName: strings.ToValidUTF8(in.OriginalName, "\uFFFD"),
		MimeType:     mime,
		Size:         size,
		Path:         path,
		CaseID:       caseID,
		UserID:       userID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.logger.Errorw("Upload: compensation failed", "path", path, "error", rmErr)
		}
		return nil, err
	}

	s.logger.Infow("Document uploaded", "document_id", doc.ID, "case_id", caseID, "user_id", userID, "size", size)
	s.activity.Record(ctx, userID, model.ActivityDocumentUploaded, "Uploaded document: "+doc.Name, nil,
		map[string]any{"documentId": doc.ID, "caseId": caseID, "workspaceId": workspaceID})

	full, err := s.docs.GetByID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	v := s.view(sc, *full, userID)
	return &v, nil
}

// Download открывает файл документа. Закрыть файл должен вызывающий.
func (s *DocumentService) Download(ctx context.Context, userID, workspaceID, caseID, documentID int64) (*model.Document, *os.File, error) {
	if _, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionRead); err != nil {
		return nil, nil, err
	}
	doc, err := s.documentInCase(ctx, caseID, documentID, false)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.store.Open(doc.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, &Error{Kind: ErrNotFound, Message: "Document file not found", Err: err}
		}
		return nil, nil, err
	}
	return doc, f, nil
}

// Update меняет имя и, если список не пуст, заменяет теги.
func (s *DocumentService) Update(ctx context.Context, userID, workspaceID, caseID, documentID int64, name *string, tagIDs []int64) (*DocumentView, error) {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentInCase(ctx, caseID, documentID, false)
	if err != nil {
		return nil, err
	}
	newName := doc.Name
	if name != nil {
		newName = displayName(*name, doc.OriginalName)
	}
	if err := s.checkTags(ctx, workspaceID, tagIDs); err != nil {
		return nil, err
	}
	if err := s.docs.Update(ctx, documentID, newName, tagIDs); err != nil {
		return nil, notFoundOr(err, "Document with ID %d not found", documentID)
	}
	updated, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	v := s.view(sc, *updated, userID)
	return &v, nil
}

// Delete удаляет сначала файл (ошибка только логируется), затем запись.
func (s *DocumentService) Delete(ctx context.Context, userID, workspaceID, caseID, documentID int64) error {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionRead)
	if err != nil {
		return err
	}
	doc, err := s.documentInCase(ctx, caseID, documentID, false)
	if err != nil {
		return err
	}
	if !policy.CanDeleteDocument(sc.membership, doc, userID) {
		return &Error{Kind: ErrForbidden, Message: "You do not have permission to delete this document", Err: policy.ErrInsufficientRole}
	}

	if err := s.store.Remove(doc.Path); err != nil {
		s.logger.Warnw("Delete document: file removal failed", "document_id", documentID, "path", doc.Path, "error", err)
	}
	if err := s.docs.Delete(ctx, documentID); err != nil {
		return notFoundOr(err, "Document with ID %d not found", documentID)
	}
	s.activity.Record(ctx, userID, model.ActivityDocumentDeleted, "Deleted document: "+doc.Name, nil,
		map[string]any{"documentId": documentID, "caseId": caseID, "workspaceId": workspaceID})
	return nil
}

// Bulk добавляет теги ко всем документам; существующие связи сохраняются.
func (s *DocumentService) Bulk(ctx context.Context, userID, workspaceID, caseID int64, documentIDs, tagIDs []int64) ([]DocumentView, error) {
	sc, err := s.requireCase(ctx, userID, workspaceID, caseID, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if len(documentIDs) == 0 {
		return nil, badRequestf("documentIds must contain at least 1 element")
	}
	for _, id := range documentIDs {
		if _, err := s.documentInCase(ctx, caseID, id, false); err != nil {
			return nil, err
		}
	}
	if err := s.checkTags(ctx, workspaceID, tagIDs); err != nil {
		return nil, err
	}
	if err := s.docs.AddTags(ctx, documentIDs, tagIDs); err != nil {
		return nil, err
	}

	out := make([]DocumentView, 0, len(documentIDs))
	for _, id := range documentIDs {
		d, err := s.docs.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s.view(sc, *d, userID))
	}
	s.logger.Infow("Bulk tagged documents", "case_id", caseID, "documents", len(out), "tags", len(tagIDs))
	return out, nil
}
