package policy

import (
	"Lura/internal/model"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func member(role model.WorkspaceRole) *model.WorkspaceUser {
	return &model.WorkspaceUser{UserID: 1, Role: role}
}

func TestAllow_Matrix(t *testing.T) {
	roles := []model.WorkspaceRole{
		model.WorkspaceRoleOwner, model.WorkspaceRoleAdmin, model.WorkspaceRoleMember,
		model.WorkspaceRoleViewer, model.WorkspaceRole("SOMETHING"),
	}
	want := map[Action][]bool{
		ActionRead:                  {true, true, true, true, true},
		ActionCreate:                {true, true, true, false, false},
		ActionUpdate:                {true, true, true, false, false},
		ActionDelete:                {true, true, false, false, false},
		ActionDeleteWorkspace:       {true, false, false, false, false},
		ActionManageMembers:         {true, true, false, false, false},
		ActionUpdateWorkspaceStatus: {true, true, false, false, false},
	}
	for action, expected := range want {
		for i, role := range roles {
			err := Allow(member(role), action)
			if expected[i] {
				assert.NoError(t, err, "%s by %s", action, role)
				continue
			}
			assert.ErrorIs(t, err, ErrInsufficientRole, "%s by %s", action, role)
			assert.ErrorIs(t, err, ErrForbidden)
		}
	}
}

func TestAllow_NonMember(t *testing.T) {
	err := Allow(nil, ActionRead)
	assert.ErrorIs(t, err, ErrNotMember)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestCanEditComment(t *testing.T) {
	c := &model.Comment{UserID: 7}
	assert.True(t, CanEditComment(member(model.WorkspaceRoleViewer), c, 7), "author")
	assert.False(t, CanEditComment(member(model.WorkspaceRoleMember), c, 8))
	assert.True(t, CanEditComment(member(model.WorkspaceRoleAdmin), c, 8))
	assert.True(t, CanEditComment(member(model.WorkspaceRoleOwner), c, 8))
	assert.False(t, CanEditComment(nil, c, 7))
}

func TestCanDeleteDocument(t *testing.T) {
	d := &model.Document{UserID: 7}
	assert.True(t, CanDeleteDocument(member(model.WorkspaceRoleMember), d, 7), "uploader")
	assert.False(t, CanDeleteDocument(member(model.WorkspaceRoleMember), d, 8))
	assert.True(t, CanDeleteDocument(member(model.WorkspaceRoleAdmin), d, 8))
	assert.False(t, CanDeleteDocument(nil, d, 7))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "delete_workspace", ActionDeleteWorkspace.String())
	assert.Equal(t, "action(99)", Action(99).String())
}
