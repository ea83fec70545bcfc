package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"context"
	"strings"

	"go.uber.org/zap"
)

// CommentService — комментарии к документам.
type CommentService struct {
	cases    repo.CaseRepository
	docs     repo.DocumentRepository
	comments repo.CommentRepository
	auth     *Authorizer
	activity *ActivityService
	logger   *zap.SugaredLogger
}

func NewCommentService(
	cases repo.CaseRepository,
	docs repo.DocumentRepository,
	comments repo.CommentRepository,
	auth *Authorizer,
	activity *ActivityService,
	logger *zap.SugaredLogger,
) *CommentService {
	return &CommentService{cases: cases, docs: docs, comments: comments, auth: auth, activity: activity, logger: logger}
}

func (s *CommentService) requireDocument(ctx context.Context, userID, workspaceID, caseID, documentID int64, action policy.Action) (*scope, error) {
	sc, err := requireCase(ctx, s.auth, s.cases, userID, workspaceID, caseID, action)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, notFoundOr(err, "Document with ID %d not found", documentID)
	}
	if doc.CaseID != caseID {
		return nil, forbiddenf("Document with ID %d does not belong to the specified case", documentID)
	}
	return sc, nil
}

// editable находит комментарий документа и проверяет право его менять.
func (s *CommentService) editable(ctx context.Context, sc *scope, documentID, commentID, userID int64) (*model.Comment, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment with ID %d not found", commentID)
	}
	if c.DocumentID != documentID {
		return nil, forbiddenf("Comment with ID %d does not belong to the specified document", commentID)
	}
	if !policy.CanEditComment(sc.membership, c, userID) {
		return nil, &Error{Kind: ErrForbidden, Message: "You can only modify your own comments", Err: policy.ErrInsufficientRole}
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, userID, workspaceID, caseID, documentID int64, content string) (*model.Comment, error) {
	if _, err := s.requireDocument(ctx, userID, workspaceID, caseID, documentID, policy.ActionCreate); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, badRequestf("content is required")
	}
	c := &model.Comment{Content: content, DocumentID: documentID, UserID: userID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, model.ActivityCommentCreated, "Commented on document", nil,
		map[string]any{"commentId": c.ID, "documentId": documentID, "caseId": caseID, "workspaceId": workspaceID})
	return s.comments.GetByID(ctx, c.ID)
}

// List возвращает комментарии документа, старые первыми.
func (s *CommentService) List(ctx context.Context, userID, workspaceID, caseID, documentID int64) ([]model.Comment, error) {
	if _, err := s.requireDocument(ctx, userID, workspaceID, caseID, documentID, policy.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.comments.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Comment{}
	}
	return list, nil
}

func (s *CommentService) Update(ctx context.Context, userID, workspaceID, caseID, documentID, commentID int64, content string) (*model.Comment, error) {
	sc, err := s.requireDocument(ctx, userID, workspaceID, caseID, documentID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	if _, err := s.editable(ctx, sc, documentID, commentID, userID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, badRequestf("content is required")
	}
	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, notFoundOr(err, "Comment with ID %d not found", commentID)
	}
	return s.comments.GetByID(ctx, commentID)
}

func (s *CommentService) Delete(ctx context.Context, userID, workspaceID, caseID, documentID, commentID int64) error {
	sc, err := s.requireDocument(ctx, userID, workspaceID, caseID, documentID, policy.ActionRead)
	if err != nil {
		return err
	}
	if _, err := s.editable(ctx, sc, documentID, commentID, userID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return notFoundOr(err, "Comment with ID %d not found", commentID)
	}
	s.logger.Infow("Comment deleted", "comment_id", commentID, "user_id", userID)
	return nil
}
