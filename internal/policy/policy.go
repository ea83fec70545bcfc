// Package policy описывает, какие роли workspace могут выполнять какие действия.
// Функции чистые: ни БД, ни контекста.
package policy

import (
	"Lura/internal/model"
	"errors"
	"fmt"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrNotMember        = fmt.Errorf("%w: not a workspace member", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("%w: insufficient role", ErrForbidden)
)

// Action — действие над ресурсами workspace.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionDeleteWorkspace
	ActionManageMembers
	ActionUpdateWorkspaceStatus
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionDeleteWorkspace:
		return "delete_workspace"
	case ActionManageMembers:
		return "manage_members"
	case ActionUpdateWorkspaceStatus:
		return "update_workspace_status"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

var allowed = map[Action][]model.WorkspaceRole{
	ActionCreate:                {model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin, model.WorkspaceRoleMember},
	ActionUpdate:                {model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin, model.WorkspaceRoleMember},
	ActionDelete:                {model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin},
	ActionDeleteWorkspace:       {model.WorkspaceRoleOwner},
	ActionManageMembers:         {model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin},
	ActionUpdateWorkspaceStatus: {model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin},
}

// Allow проверяет членство и роль. Чтение доступно любому участнику,
// неизвестная роль может только читать.
func Allow(m *model.WorkspaceUser, action Action) error {
	if m == nil {
		return ErrNotMember
	}
	if action == ActionRead {
		return nil
	}
	if hasRole(m.Role, allowed[action]...) {
		return nil
	}
	return fmt.Errorf("%w: %s requires one of %v", ErrInsufficientRole, action, allowed[action])
}

// IsManager: OWNER или ADMIN.
func IsManager(m *model.WorkspaceUser) bool {
	return m != nil && hasRole(m.Role, model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin)
}

// CanEditComment: автор комментария или OWNER/ADMIN.
func CanEditComment(m *model.WorkspaceUser, c *model.Comment, userID int64) bool {
	if m == nil || c == nil {
		return false
	}
	return c.UserID == userID || IsManager(m)
}

// CanDeleteDocument: OWNER/ADMIN или тот, кто загрузил документ.
func CanDeleteDocument(m *model.WorkspaceUser, d *model.Document, userID int64) bool {
	if m == nil || d == nil {
		return false
	}
	return d.UserID == userID || IsManager(m)
}

// CanEditDocument — права на изменение имени и тегов документа.
func CanEditDocument(m *model.WorkspaceUser) bool {
	return Allow(m, ActionUpdate) == nil
}

func hasRole(role model.WorkspaceRole, roles ...model.WorkspaceRole) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}
