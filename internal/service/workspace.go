package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"Lura/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkspaceService — workspace и управление участниками.
type WorkspaceService struct {
	workspaces repo.WorkspaceRepository
	users      repo.UserRepository
	auth       *Authorizer
	activity   *ActivityService
	store      storage.Store
	logger     *zap.SugaredLogger
}

func NewWorkspaceService(
	workspaces repo.WorkspaceRepository,
	users repo.UserRepository,
	auth *Authorizer,
	activity *ActivityService,
	store storage.Store,
	logger *zap.SugaredLogger,
) *WorkspaceService {
	return &WorkspaceService{
		workspaces: workspaces,
		users:      users,
		auth:       auth,
		activity:   activity,
		store:      store,
		logger:     logger,
	}
}

type CreateWorkspaceInput struct {
	Name        string
	Description string
}

type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
	Status      *model.WorkspaceStatus
}

// MemberCount сериализуется как "_count": {"users": N}.
type MemberCount struct {
	Users int64 `json:"users"`
}

type WorkspaceSummary struct {
	model.Workspace
	Count MemberCount `json:"_count"`
}

type WorkspaceList struct {
	Owned  []WorkspaceSummary `json:"owned"`
	Shared []WorkspaceSummary `json:"shared"`
}

// Create создаёт workspace со статусом ACTIVE, создатель становится OWNER.
func (s *WorkspaceService) Create(ctx context.Context, userID int64, in CreateWorkspaceInput) (*model.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, badRequestf("name is required")
	}
	ws := &model.Workspace{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Status:      model.WorkspaceStatusActive,
		OwnerID:     userID,
	}
	if err := s.workspaces.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	s.logger.Infow("Workspace created", "workspace_id", ws.ID, "user_id", userID)
	s.activity.Record(ctx, userID, model.ActivityWorkspaceCreated,
		"Created workspace: "+ws.Name, nil, map[string]any{"workspaceId": ws.ID})
	return ws, nil
}

// List возвращает свои и чужие (где пользователь участник) workspace с числом участников.
func (s *WorkspaceService) List(ctx context.Context, userID int64) (*WorkspaceList, error) {
	owned, err := s.workspaces.ListOwned(ctx, userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.workspaces.ListShared(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(owned)+len(shared))
	for _, w := range owned {
		ids = append(ids, w.ID)
	}
	for _, w := range shared {
		ids = append(ids, w.ID)
	}
	counts, err := s.workspaces.CountMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &WorkspaceList{Owned: summarize(owned, counts), Shared: summarize(shared, counts)}, nil
}

func summarize(list []model.Workspace, counts map[int64]int64) []WorkspaceSummary {
	out := make([]WorkspaceSummary, 0, len(list))
	for _, w := range list {
		out = append(out, WorkspaceSummary{Workspace: w, Count: MemberCount{Users: counts[w.ID]}})
	}
	return out
}

// Get возвращает workspace с владельцем и участниками.
func (s *WorkspaceService) Get(ctx context.Context, userID, workspaceID int64) (*model.Workspace, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.GetWithMembers(ctx, workspaceID)
	if err != nil {
		return nil, notFoundOr(err, "Workspace with ID %d not found", workspaceID)
	}
	return ws, nil
}

// Update меняет имя и описание; смена статуса доступна только OWNER/ADMIN.
func (s *WorkspaceService) Update(ctx context.Context, userID, workspaceID int64, in UpdateWorkspaceInput) (*model.Workspace, error) {
	_, m, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, badRequestf("name must not be empty")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, badRequestf("invalid status %q", *in.Status)
		}
		if err := policy.Allow(m, policy.ActionUpdateWorkspaceStatus); err != nil {
			return nil, &Error{Kind: ErrForbidden, Message: "Only owners and admins can change the workspace status", Err: err}
		}
		updates["status"] = *in.Status
	}
	if err := s.workspaces.Update(ctx, workspaceID, updates); err != nil {
		return nil, notFoundOr(err, "Workspace with ID %d not found", workspaceID)
	}
	return s.workspaces.GetWithMembers(ctx, workspaceID)
}

// Delete доступен только записанному владельцу workspace. Файлы документов удаляются после БД.
func (s *WorkspaceService) Delete(ctx context.Context, userID, workspaceID int64) error {
	ws, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionDeleteWorkspace)
	if err != nil {
		return err
	}
	if ws.OwnerID != userID {
		return forbiddenf("Only the workspace owner can delete it")
	}
	paths, err := s.workspaces.Delete(ctx, workspaceID)
	if err != nil {
		return notFoundOr(err, "Workspace with ID %d not found", workspaceID)
	}
	removeFiles(s.store, s.logger, paths)
	s.logger.Infow("Workspace deleted", "workspace_id", workspaceID, "user_id", userID, "files", len(paths))
	return nil
}

// AddUser добавляет участника по email или меняет роль существующего.
func (s *WorkspaceService) AddUser(ctx context.Context, userID, workspaceID int64, email string, role model.WorkspaceRole) (*model.WorkspaceUser, error) {
	ws, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionManageMembers)
	if err != nil {
		return nil, err
	}
	switch role {
	case model.WorkspaceRoleAdmin, model.WorkspaceRoleMember, model.WorkspaceRoleViewer:
	default:
		return nil, badRequestf("role must be one of ADMIN, MEMBER, VIEWER")
	}
	email = normalizeEmail(email)
	target, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "User with email %s not found", email)
	}
	if target.ID == userID {
		return nil, forbiddenf("You cannot add yourself to the workspace")
	}
	if target.ID == ws.OwnerID {
		return nil, forbiddenf("The workspace owner's role cannot be changed")
	}
	m, err := s.workspaces.UpsertMember(ctx, workspaceID, target.ID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Workspace member set", "workspace_id", workspaceID, "user_id", target.ID, "role", role)
	return m, nil
}

// RemoveUser исключает участника; владельца исключить нельзя.
func (s *WorkspaceService) RemoveUser(ctx context.Context, userID, workspaceID, targetID int64) error {
	ws, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionManageMembers)
	if err != nil {
		return err
	}
	if targetID == ws.OwnerID {
		return forbiddenf("The workspace owner cannot be removed")
	}
	removed, err := s.workspaces.RemoveMember(ctx, workspaceID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return notFoundf("User %d is not a member of this workspace", targetID)
	}
	return nil
}

// ListUsers возвращает участников с ролями.
func (s *WorkspaceService) ListUsers(ctx context.Context, userID, workspaceID int64) ([]model.WorkspaceUser, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.workspaces.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.WorkspaceUser{}
	}
	return list, nil
}

// notFoundOr превращает gorm.ErrRecordNotFound в ErrNotFound с сообщением, остальное отдаёт как есть.
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf(format, args...)
	}
	return err
}

// removeFiles удаляет файлы с диска; ошибки только логируются.
func removeFiles(store storage.Store, logger *zap.SugaredLogger, paths []string) {
	for _, p := range paths {
		if err := store.Remove(p); err != nil {
			logger.Warnw("Failed to remove file", "path", p, "error", err)
		}
	}
}
