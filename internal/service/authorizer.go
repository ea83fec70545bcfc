package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"context"
	"errors"

	"gorm.io/gorm"
)

// Authorizer — единая проверка доступа к workspace: существование (404),
// затем членство и политика роли (403). Её вызывают все сервисы workspace-уровня.
type Authorizer struct {
	workspaces repo.WorkspaceRepository
}

func NewAuthorizer(workspaces repo.WorkspaceRepository) *Authorizer {
	return &Authorizer{workspaces: workspaces}
}

// Require возвращает workspace и членство пользователя, если действие разрешено.
func (a *Authorizer) Require(ctx context.Context, userID, workspaceID int64, action policy.Action) (*model.Workspace, *model.WorkspaceUser, error) {
	ws, err := a.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFoundf("Workspace with ID %d not found", workspaceID)
		}
		return nil, nil, err
	}

	m, err := a.workspaces.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		m = nil
	}

	if err := policy.Allow(m, action); err != nil {
		msg := "You do not have permission to perform this action"
		if errors.Is(err, policy.ErrNotMember) {
			msg = "You do not have access to this workspace"
		}
		return nil, nil, &Error{Kind: ErrForbidden, Message: msg, Err: err}
	}
	return ws, m, nil
}
