package handlers_test

import (
	"Lura/internal/service"
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) upload(t *testing.T, token, path, filename, displayName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "text/plain")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if displayName != "" {
		require.NoError(t, mw.WriteField("displayName", displayName))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestDocumentUploadDownloadDelete(t *testing.T) {
	e := newEnv(t)
	_, tok := e.user(t, "a@example.com")
	wsID := e.createWorkspace(t, tok)
	caseID := e.createCase(t, tok, wsID)
	docs := casePath(wsID, caseID, "/documents")

	rr := e.upload(t, tok, docs+"/upload", "my report.txt", "  ", []byte("hello world"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	doc := decode[service.DocumentView](t, rr)
	assert.Equal(t, "my report.txt", doc.Name)
	assert.Equal(t, "text/plain", doc.MimeType)
	assert.EqualValues(t, 11, doc.Size)
	assert.True(t, doc.Permissions.IsUploader)
	assert.True(t, doc.CanDelete)
	_, err := os.Stat(doc.Path)
	require.NoError(t, err)

	rr = e.do(t, http.MethodGet, docs, tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]service.DocumentView](t, rr), 1)

	rr = e.do(t, http.MethodGet, docs+"/"+itoa(doc.ID)+"/download", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="my%20report.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "hello world", rr.Body.String())

	rr = e.do(t, http.MethodDelete, docs+"/"+itoa(doc.ID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"Document deleted successfully"}`, rr.Body.String())

	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, docs+"/"+itoa(doc.ID), tok, nil).Code)
}

func TestDocumentUpload_Errors(t *testing.T) {
	e := newEnv(t)
	_, tok := e.user(t, "a@example.com")
	wsID := e.createWorkspace(t, tok)
	caseID := e.createCase(t, tok, wsID)
	docs := casePath(wsID, caseID, "/documents")

	t.Run("no file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("displayName", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, docs+"/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		e.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "No file uploaded", decode[errResp](t, rr).Message)
	})

	t.Run("too large", func(t *testing.T) {
		rr := e.upload(t, tok, docs+"/upload", "big.bin", "", bytes.Repeat([]byte("x"), 1<<20+10))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		entries, err := os.ReadDir(e.store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("case of another workspace", func(t *testing.T) {
		otherWS := e.createWorkspace(t, tok)
		rr := e.upload(t, tok, casePath(otherWS, caseID, "/documents/upload"), "a.txt", "", []byte("a"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "This case does not belong to the specified workspace", decode[errResp](t, rr).Message)
	})
}

func TestDocumentTagsAndComments(t *testing.T) {
	e := newEnv(t)
	_, tok := e.user(t, "a@example.com")
	wsID := e.createWorkspace(t, tok)
	caseID := e.createCase(t, tok, wsID)
	docs := casePath(wsID, caseID, "/documents")

	rr := e.upload(t, tok, docs+"/upload", "a.txt", "Contract", []byte("a"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	doc := decode[service.DocumentView](t, rr)
	assert.Equal(t, "Contract", doc.Name)

	rr = e.do(t, http.MethodPost, wsPath(wsID, "/tags"), tok, map[string]any{"name": "t1", "color": "#000000"})
	require.Equal(t, http.StatusCreated, rr.Code)
	tagID := decode[map[string]any](t, rr)["id"]

	rr = e.do(t, http.MethodPost, docs+"/bulk", tok, map[string]any{"documentIds": []int64{}, "tagIds": []any{tagID}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, docs+"/bulk", tok, map[string]any{"documentIds": []int64{doc.ID}, "tagIds": []any{tagID}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// пустой tagIds у документа теги не сбрасывает
	rr = e.do(t, http.MethodPatch, docs+"/"+itoa(doc.ID), tok, map[string]any{"name": "", "tagIds": []int64{}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[service.DocumentView](t, rr)
	assert.Equal(t, "a.txt", updated.Name)
	assert.Len(t, updated.Tags, 1)

	rr = e.do(t, http.MethodPost, docs+"/"+itoa(doc.ID)+"/comments", tok, map[string]any{"content": "looks good"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	commentID := int64(decode[map[string]any](t, rr)["id"].(float64))

	rr = e.do(t, http.MethodPost, docs+"/"+itoa(doc.ID)+"/comments", tok, map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPatch, docs+"/"+itoa(doc.ID)+"/comments/"+itoa(commentID), tok, map[string]any{"content": "edited"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodGet, docs+"/"+itoa(doc.ID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[service.DocumentDetail](t, rr)
	assert.Equal(t, "OWNER", string(detail.UserRole))
	assert.True(t, detail.IsOwner)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "edited", detail.Comments[0].Content)

	rr = e.do(t, http.MethodDelete, docs+"/"+itoa(doc.ID)+"/comments/"+itoa(commentID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = e.do(t, http.MethodGet, docs+"/"+itoa(doc.ID)+"/comments", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
