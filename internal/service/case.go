package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"Lura/internal/storage"
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// CaseService — кейсы внутри workspace.
type CaseService struct {
	cases    repo.CaseRepository
	auth     *Authorizer
	activity *ActivityService
	store    storage.Store
	logger   *zap.SugaredLogger
}

func NewCaseService(cases repo.CaseRepository, auth *Authorizer, activity *ActivityService, store storage.Store, logger *zap.SugaredLogger) *CaseService {
	return &CaseService{cases: cases, auth: auth, activity: activity, store: store, logger: logger}
}

type CreateCaseInput struct {
	Title       string
	Description string
	Status      model.CaseStatus
	Priority    model.CasePriority
}

// UpdateCaseInput; TagIDs == nil — теги не меняются, пустой срез — очищает их.
type UpdateCaseInput struct {
	Title       *string
	Description *string
	Status      *model.CaseStatus
	Priority    *model.CasePriority
	TagIDs      []int64
}

func (s *CaseService) Create(ctx context.Context, userID, workspaceID int64, in CreateCaseInput) (*model.Case, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionCreate); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, badRequestf("title is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, badRequestf("invalid status %q", in.Status)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return nil, badRequestf("invalid priority %q", in.Priority)
	}
	c := &model.Case{
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		WorkspaceID: workspaceID,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Tags = []model.Tag{}
	s.logger.Infow("Case created", "case_id", c.ID, "workspace_id", workspaceID, "user_id", userID)
	s.activity.Record(ctx, userID, model.ActivityCaseCreated, "Created case: "+c.Title, nil,
		map[string]any{"caseId": c.ID, "workspaceId": workspaceID})
	return c, nil
}

// List возвращает кейсы workspace с тегами, недавно изменённые первыми.
func (s *CaseService) List(ctx context.Context, userID, workspaceID int64) ([]model.Case, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.cases.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Case{}
	}
	for i := range list {
		if list[i].Tags == nil {
			list[i].Tags = []model.Tag{}
		}
	}
	return list, nil
}

func (s *CaseService) Get(ctx context.Context, userID, workspaceID, caseID int64) (*model.Case, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.caseInWorkspace(ctx, workspaceID, caseID)
}

// caseInWorkspace — кейс из другого workspace считается несуществующим.
func (s *CaseService) caseInWorkspace(ctx context.Context, workspaceID, caseID int64) (*model.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, notFoundOr(err, "Case with ID %d not found in this workspace", caseID)
	}
	if c.WorkspaceID != workspaceID {
		return nil, notFoundf("Case with ID %d not found in this workspace", caseID)
	}
	if c.Tags == nil {
		c.Tags = []model.Tag{}
	}
	return c, nil
}

// Update меняет поля и, если задан TagIDs, заменяет набор тегов. Всё атомарно.
func (s *CaseService) Update(ctx context.Context, userID, workspaceID, caseID int64, in UpdateCaseInput) (*model.Case, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if _, err := s.caseInWorkspace(ctx, workspaceID, caseID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, badRequestf("title must not be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, badRequestf("invalid status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, badRequestf("invalid priority %q", *in.Priority)
		}
		updates["priority"] = *in.Priority
	}

	if err := s.cases.Update(ctx, caseID, workspaceID, updates, in.TagIDs); err != nil {
		return nil, mapTagError(err)
	}
	s.activity.Record(ctx, userID, model.ActivityCaseUpdated, "Updated case", nil,
		map[string]any{"caseId": caseID, "workspaceId": workspaceID})
	return s.caseInWorkspace(ctx, workspaceID, caseID)
}

// Delete удаляет кейс вместе с документами; файлы удаляются после БД.
func (s *CaseService) Delete(ctx context.Context, userID, workspaceID, caseID int64) error {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionDelete); err != nil {
		return err
	}
	c, err := s.caseInWorkspace(ctx, workspaceID, caseID)
	if err != nil {
		return err
	}
	paths, err := s.cases.Delete(ctx, caseID)
	if err != nil {
		return notFoundOr(err, "Case with ID %d not found in this workspace", caseID)
	}
	removeFiles(s.store, s.logger, paths)
	s.activity.Record(ctx, userID, model.ActivityCaseDeleted, "Deleted case: "+c.Title, nil,
		map[string]any{"caseId": caseID, "workspaceId": workspaceID})
	return nil
}

// mapTagError переводит ошибки проверки тегов репозитория в ошибки сервиса.
func mapTagError(err error) error {
	switch {
	case errors.Is(err, repo.ErrTagNotFound):
		return &Error{Kind: ErrNotFound, Message: "Tag not found", Err: err}
	case errors.Is(err, repo.ErrTagForeign):
		return &Error{Kind: ErrForbidden, Message: "Tag does not belong to this workspace", Err: err}
	}
	return notFoundOr(err, "Case not found")
}

// CaseTagService — отдельные операции с тегами кейса.
type CaseTagService struct {
	cases repo.CaseRepository
	tags  repo.TagRepository
	auth  *Authorizer
}

func NewCaseTagService(cases repo.CaseRepository, tags repo.TagRepository, auth *Authorizer) *CaseTagService {
	return &CaseTagService{cases: cases, tags: tags, auth: auth}
}

func (s *CaseTagService) caseInWorkspace(ctx context.Context, workspaceID, caseID int64) error {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return notFoundOr(err, "Case with ID %d not found in this workspace", caseID)
	}
	if c.WorkspaceID != workspaceID {
		return notFoundf("Case with ID %d not found in this workspace", caseID)
	}
	return nil
}

func (s *CaseTagService) List(ctx context.Context, userID, workspaceID, caseID int64) ([]model.Tag, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	if err := s.caseInWorkspace(ctx, workspaceID, caseID); err != nil {
		return nil, err
	}
	tags, err := s.cases.ListTags(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

// Add привязывает тег; повторная привязка — 400.
func (s *CaseTagService) Add(ctx context.Context, userID, workspaceID, caseID, tagID int64) (*model.Tag, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.caseInWorkspace(ctx, workspaceID, caseID); err != nil {
		return nil, err
	}
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		return nil, notFoundOr(err, "Tag with ID %d not found", tagID)
	}
	if tag.WorkspaceID != workspaceID {
		return nil, forbiddenf("Tag does not belong to this workspace")
	}
	has, err := s.cases.HasTag(ctx, caseID, tagID)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, badRequestf("Tag is already added to this case")
	}
	if err := s.cases.AddTag(ctx, caseID, tagID); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *CaseTagService) Remove(ctx context.Context, userID, workspaceID, caseID, tagID int64) error {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionUpdate); err != nil {
		return err
	}
	if err := s.caseInWorkspace(ctx, workspaceID, caseID); err != nil {
		return err
	}
	removed, err := s.cases.RemoveTag(ctx, caseID, tagID)
	if err != nil {
		return err
	}
	if !removed {
		return notFoundf("Tag %d is not attached to this case", tagID)
	}
	return nil
}
