package handlers_test

import (
	"Lura/internal/model"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseTagsClearedByEmptyList(t *testing.T) {
	e := newEnv(t)
	_, tok := e.user(t, "a@example.com")
	wsID := e.createWorkspace(t, tok)
	caseID := e.createCase(t, tok, wsID)

	rr := e.do(t, http.MethodPost, wsPath(wsID, "/tags"), tok, map[string]any{"name": "urgent", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tag := decode[model.Tag](t, rr)

	rr = e.do(t, http.MethodPost, casePath(wsID, caseID, "/tags/"+itoa(tag.ID)), tok, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodPost, casePath(wsID, caseID, "/tags/"+itoa(tag.ID)), tok, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// без tagIds теги не трогаем
	rr = e.do(t, http.MethodPatch, casePath(wsID, caseID, ""), tok, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	c := decode[model.Case](t, rr)
	assert.Equal(t, "Renamed", c.Title)
	assert.Len(t, c.Tags, 1)

	rr = e.do(t, http.MethodPatch, casePath(wsID, caseID, ""), tok, map[string]any{"tagIds": []int64{}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decode[model.Case](t, rr).Tags)

	rr = e.do(t, http.MethodGet, casePath(wsID, caseID, "/tags"), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCaseHandlers_Access(t *testing.T) {
	e := newEnv(t)
	_, ownerTok := e.user(t, "a@example.com")
	viewer, viewerTok := e.user(t, "v@example.com")
	_, strangerTok := e.user(t, "b@example.com")
	wsID := e.createWorkspace(t, ownerTok)
	caseID := e.createCase(t, ownerTok, wsID)

	rr := e.do(t, http.MethodPost, wsPath(wsID, "/users"), ownerTok, map[string]any{"email": viewer.Email, "role": "VIEWER"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = e.do(t, http.MethodGet, wsPath(wsID, "/cases"), strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, http.MethodGet, wsPath(wsID, "/cases"), viewerTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Case](t, rr), 1)

	rr = e.do(t, http.MethodPost, wsPath(wsID, "/cases"), viewerTok, map[string]any{"title": "nope"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, http.MethodPost, wsPath(wsID, "/cases"), ownerTok, map[string]any{"title": "x", "priority": "CRITICAL"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodGet, casePath(wsID, 9999, ""), ownerTok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do(t, http.MethodDelete, casePath(wsID, caseID, ""), ownerTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, casePath(wsID, caseID, ""), ownerTok, nil).Code)
}

func TestTagHandlers_Validation(t *testing.T) {
	e := newEnv(t)
	_, tok := e.user(t, "a@example.com")
	wsID := e.createWorkspace(t, tok)

	rr := e.do(t, http.MethodPost, wsPath(wsID, "/tags"), tok, map[string]any{"name": "x", "color": "red"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, name := range []string{"beta", "alpha"} {
		rr = e.do(t, http.MethodPost, wsPath(wsID, "/tags"), tok, map[string]any{"name": name, "color": "#abc"})
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr = e.do(t, http.MethodGet, wsPath(wsID, "/tags"), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tags := decode[[]model.Tag](t, rr)
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
}
