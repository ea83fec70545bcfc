package service

import (
	"Lura/internal/mailer"
	"Lura/internal/model"
	"Lura/internal/repo"
	"Lura/internal/storage"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeSender запоминает письма; err, если задан, возвращается из Send.
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

var errSMTPDown = errors.New("smtp down")

// stack — все сервисы поверх настоящей in-memory SQLite.
type stack struct {
	db    *gorm.DB
	mail  *fakeSender
	store *storage.Disk

	users      repo.UserRepository
	workspaces repo.WorkspaceRepository
	cases      repo.CaseRepository
	tags       repo.TagRepository
	docs       repo.DocumentRepository
	calendar   repo.CalendarRepository
	activities repo.ActivityRepository

	tokens     *TokenIssuer
	magic      *MagicLinkService
	authSvc    *AuthService
	activity   *ActivityService
	workspace  *WorkspaceService
	caseSvc    *CaseService
	caseTags   *CaseTagService
	tagSvc     *TagService
	document   *DocumentService
	comment    *CommentService
	calendarSv *CalendarService
	notifier   *ReminderNotifier
}

func newStack(t *testing.T) *stack {
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

	logger := zap.NewNop().Sugar()
	s := &stack{
		db:         db,
		mail:       &fakeSender{},
		store:      store,
		users:      repo.NewUserRepository(db),
		workspaces: repo.NewWorkspaceRepository(db),
		cases:      repo.NewCaseRepository(db),
		tags:       repo.NewTagRepository(db),
		docs:       repo.NewDocumentRepository(db),
		calendar:   repo.NewCalendarRepository(db),
		activities: repo.NewActivityRepository(db),
	}
	authz := NewAuthorizer(s.workspaces)
	s.tokens = NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	s.activity = NewActivityService(s.activities, logger)
	s.magic = NewMagicLinkService(s.users, repo.NewMagicLinkRepository(db), s.mail, "http://api.test", logger)
	s.authSvc = NewAuthService(s.users, s.magic, s.tokens, nil, "http://front.test", logger)
	s.workspace = NewWorkspaceService(s.workspaces, s.users, authz, s.activity, store, logger)
	s.caseSvc = NewCaseService(s.cases, authz, s.activity, store, logger)
	s.caseTags = NewCaseTagService(s.cases, s.tags, authz)
	s.tagSvc = NewTagService(s.tags, authz)
	s.document = NewDocumentService(s.cases, s.docs, s.tags, authz, s.activity, store, logger)
	s.comment = NewCommentService(s.cases, s.docs, repo.NewCommentRepository(db), authz, s.activity, logger)
	s.calendarSv = NewCalendarService(s.calendar, s.activity, logger)
	s.notifier = NewReminderNotifier(s.calendar, s.activity, s.mail, nil, 5*time.Minute, logger)
	return s
}

func (s *stack) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), &model.User{Email: email, Name: email})
	require.NoError(t, err)
	return u
}

func (s *stack) workspaceOf(t *testing.T, owner *model.User) *model.Workspace {
	t.Helper()
	ws, err := s.workspace.Create(context.Background(), owner.ID, CreateWorkspaceInput{Name: "W"})
	require.NoError(t, err)
	return ws
}

func (s *stack) member(t *testing.T, ws *model.Workspace, owner, u *model.User, role model.WorkspaceRole) {
	t.Helper()
	_, err := s.workspace.AddUser(context.Background(), owner.ID, ws.ID, u.Email, role)
	require.NoError(t, err)
}

func (s *stack) activitiesOf(t *testing.T, userID int64, activityType string) []model.Activity {
	t.Helper()
	var list []model.Activity
	require.NoError(t, s.db.Where("user_id = ? AND type = ?", userID, activityType).Find(&list).Error)
	return list
}
