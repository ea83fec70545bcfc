package handlers_test

import (
	"Lura/internal/config"
	"Lura/internal/handlers"
	"Lura/internal/mailer"
	"Lura/internal/model"
	"Lura/internal/oauth"
	"Lura/internal/repo"
	"Lura/internal/service"
	"Lura/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) last() mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return mailer.Message{}
	}
	return f.sent[len(f.sent)-1]
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*oauth.Profile, error) {
	args := m.Called(ctx, code)
	if p, ok := args.Get(0).(*oauth.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ oauth.Provider = (*mockProvider)(nil)

// testEnv — роутер поверх настоящей in-memory SQLite и временного каталога загрузок.
type testEnv struct {
	router http.Handler
	db     *gorm.DB
	users  repo.UserRepository
	tokens *service.TokenIssuer
	mail   *fakeSender
	google *mockProvider
	store  *storage.Disk
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	store, err := storage.NewDisk(t.TempDir(), 1<<20)
	require.NoError(t, err)

	cfg := &config.Config{
		FrontendURL: "http://front.test",
		BackendURL:  "http://api.test",
		UploadMaxMB: 1,
	}
	logger := zap.NewNop().Sugar()
	e := &testEnv{
		db:     db,
		users:  repo.NewUserRepository(db),
		tokens: service.NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
		mail:   &fakeSender{},
		google: new(mockProvider),
		store:  store,
	}

	workspaces := repo.NewWorkspaceRepository(db)
	cases := repo.NewCaseRepository(db)
	tags := repo.NewTagRepository(db)
	docs := repo.NewDocumentRepository(db)
	authz := service.NewAuthorizer(workspaces)
	activity := service.NewActivityService(repo.NewActivityRepository(db), logger)
	magic := service.NewMagicLinkService(e.users, repo.NewMagicLinkRepository(db), e.mail, cfg.BackendURL, logger)

	svc := handlers.Services{
		Auth:      service.NewAuthService(e.users, magic, e.tokens, e.google, cfg.FrontendURL, logger),
		MagicLink: magic,
		Tokens:    e.tokens,
		Workspace: service.NewWorkspaceService(workspaces, e.users, authz, activity, store, logger),
		Case:      service.NewCaseService(cases, authz, activity, store, logger),
		CaseTag:   service.NewCaseTagService(cases, tags, authz),
		Tag:       service.NewTagService(tags, authz),
		Document:  service.NewDocumentService(cases, docs, tags, authz, activity, store, logger),
		Comment:   service.NewCommentService(cases, docs, repo.NewCommentRepository(db), authz, activity, logger),
		Calendar:  service.NewCalendarService(repo.NewCalendarRepository(db), activity, logger),
		Activity:  activity,
	}
	e.router = handlers.NewHandler(svc, logger, cfg).Router
	return e
}

// user создаёт пользователя и возвращает его access-токен.
func (e *testEnv) user(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Email: email, Name: email})
	require.NoError(t, err)
	pair, err := e.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, pair.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errResp struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// createWorkspace создаёт workspace через API и возвращает его id.
func (e *testEnv) createWorkspace(t *testing.T, token string) int64 {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/workspaces", token, map[string]any{"name": "W"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Workspace](t, rr).ID
}

func (e *testEnv) createCase(t *testing.T, token string, wsID int64) int64 {
	t.Helper()
	rr := e.do(t, http.MethodPost, wsPath(wsID, "/cases"), token, map[string]any{"title": "C"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Case](t, rr).ID
}

func wsPath(wsID int64, suffix string) string {
	return fmt.Sprintf("/workspaces/%d%s", wsID, suffix)
}

func casePath(wsID, caseID int64, suffix string) string {
	return fmt.Sprintf("/workspaces/%d/cases/%d%s", wsID, caseID, suffix)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
