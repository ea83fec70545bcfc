package service

import (
	"Lura/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseService_EmptyTagIDsClearTags(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	ws := s.workspaceOf(t, a)

	c, err := s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "C"})
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusOpen, c.Status)
	assert.Equal(t, model.CasePriorityMedium, c.Priority)

	tag, err := s.tagSvc.Create(ctx, a.ID, ws.ID, "urgent", "#ff0000")
	require.NoError(t, err)
	_, err = s.caseTags.Add(ctx, a.ID, ws.ID, c.ID, tag.ID)
	require.NoError(t, err)

	got, err := s.caseSvc.Get(ctx, a.ID, ws.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)

	// без tagIds теги не трогаются
	title := "C2"
	got, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{Title: &title})
	require.NoError(t, err)
	assert.Len(t, got.Tags, 1)

	got, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{TagIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Equal(t, "C2", got.Title)

	assert.Len(t, s.activitiesOf(t, a.ID, model.ActivityCaseUpdated), 2)
}

func TestCaseService_NonMemberListIsForbidden(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	b := s.user(t, "b@example.com")
	ws := s.workspaceOf(t, a)

	_, err := s.caseSvc.List(ctx, b.ID, ws.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.caseSvc.Create(ctx, b.ID, ws.ID, CreateCaseInput{Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCaseService_UpdateTagChecks(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	ws := s.workspaceOf(t, a)
	other := s.workspaceOf(t, a)

	c, err := s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "C"})
	require.NoError(t, err)
	own, err := s.tagSvc.Create(ctx, a.ID, ws.ID, "own", "#00ff00")
	require.NoError(t, err)
	foreign, err := s.tagSvc.Create(ctx, a.ID, other.ID, "foreign", "#0000ff")
	require.NoError(t, err)
	_, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{TagIDs: []int64{own.ID}})
	require.NoError(t, err)

	_, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{TagIDs: []int64{foreign.ID}})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{TagIDs: []int64{9999}})
	assert.ErrorIs(t, err, ErrNotFound)

	// откат: прежний тег на месте
	got, err := s.caseSvc.Get(ctx, a.ID, ws.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, own.ID, got.Tags[0].ID)
}

func TestCaseService_Validation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	ws := s.workspaceOf(t, a)

	_, err := s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "  "})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "x", Priority: "SOMEDAY"})
	assert.ErrorIs(t, err, ErrBadRequest)

	c, err := s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "x"})
	require.NoError(t, err)
	bad := model.CaseStatus("DONE")
	_, err = s.caseSvc.Update(ctx, a.ID, ws.ID, c.ID, UpdateCaseInput{Status: &bad})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestCaseService_CaseOfOtherWorkspaceIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	w1 := s.workspaceOf(t, a)
	w2 := s.workspaceOf(t, a)
	c, err := s.caseSvc.Create(ctx, a.ID, w1.ID, CreateCaseInput{Title: "C"})
	require.NoError(t, err)

	_, err = s.caseSvc.Get(ctx, a.ID, w2.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaseService_DeleteRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	m := s.user(t, "m@example.com")
	ws := s.workspaceOf(t, a)
	s.member(t, ws, a, m, model.WorkspaceRoleMember)
	c, err := s.caseSvc.Create(ctx, m.ID, ws.ID, CreateCaseInput{Title: "C"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.caseSvc.Delete(ctx, m.ID, ws.ID, c.ID), ErrForbidden)
	require.NoError(t, s.caseSvc.Delete(ctx, a.ID, ws.ID, c.ID))
	_, err = s.caseSvc.Get(ctx, a.ID, ws.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCaseTagService(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	ws := s.workspaceOf(t, a)
	c, err := s.caseSvc.Create(ctx, a.ID, ws.ID, CreateCaseInput{Title: "C"})
	require.NoError(t, err)
	tag, err := s.tagSvc.Create(ctx, a.ID, ws.ID, "t", "#abc")
	require.NoError(t, err)

	_, err = s.caseTags.Add(ctx, a.ID, ws.ID, c.ID, tag.ID)
	require.NoError(t, err)
	_, err = s.caseTags.Add(ctx, a.ID, ws.ID, c.ID, tag.ID)
	assert.ErrorIs(t, err, ErrBadRequest)

	tags, err := s.caseTags.List(ctx, a.ID, ws.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	require.NoError(t, s.caseTags.Remove(ctx, a.ID, ws.ID, c.ID, tag.ID))
	assert.ErrorIs(t, s.caseTags.Remove(ctx, a.ID, ws.ID, c.ID, tag.ID), ErrNotFound)
}

func TestTagService_Validation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	a := s.user(t, "a@example.com")
	ws := s.workspaceOf(t, a)

	_, err := s.tagSvc.Create(ctx, a.ID, ws.ID, "t", "red")
	assert.ErrorIs(t, err, ErrBadRequest)
	_, err = s.tagSvc.Create(ctx, a.ID, ws.ID, "", "#fff")
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = s.tagSvc.Create(ctx, a.ID, ws.ID, "b", "#fff")
	require.NoError(t, err)
	_, err = s.tagSvc.Create(ctx, a.ID, ws.ID, "a", "#000000")
	require.NoError(t, err)
	tags, err := s.tagSvc.List(ctx, a.ID, ws.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].Name)
}
