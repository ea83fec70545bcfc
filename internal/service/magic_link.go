package service

import (
	"Lura/internal/mailer"
	"Lura/internal/model"
	"Lura/internal/repo"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MagicLinkTTL — время жизни ссылки входа.
const MagicLinkTTL = time.Hour

// MagicLinkService выпускает и погашает одноразовые ссылки входа.
type MagicLinkService struct {
	users      repo.UserRepository
	links      repo.MagicLinkRepository
	mail       mailer.Sender
	backendURL string
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewMagicLinkService(users repo.UserRepository, links repo.MagicLinkRepository, mail mailer.Sender, backendURL string, logger *zap.SugaredLogger) *MagicLinkService {
	return &MagicLinkService{
		users:      users,
		links:      links,
		mail:       mail,
		backendURL: strings.TrimRight(backendURL, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

// Request создаёт пользователя при необходимости, выпускает токен и отправляет письмо.
// Ошибка отправки письма не возвращается: ссылка дублируется в лог.
func (s *MagicLinkService) Request(ctx context.Context, email, name string) error {
	email = normalizeEmail(email)
	if email == "" {
		return badRequestf("email is required")
	}
	if _, err := findOrCreateUser(ctx, s.users, email, name); err != nil {
		return err
	}

	token, err := newMagicToken()
	if err != nil {
		return err
	}
	if err := s.links.Upsert(ctx, email, token, s.now().Add(MagicLinkTTL).UTC()); err != nil {
		return err
	}

	link := s.backendURL + "/auth/verify-magic-link?token=" + url.QueryEscape(token)
	s.logger.Infow("Magic link issued", "email", email, "link", link)

	if err := s.mail.Send(ctx, mailer.MagicLinkMessage(email, link)); err != nil {
		s.logger.Errorw("MagicLink: failed to send email", "email", email, "error", err)
	}
	return nil
}

// Consume погашает токен. ok=false для неизвестного, просроченного или уже использованного токена.
func (s *MagicLinkService) Consume(ctx context.Context, token string) (email string, ok bool, err error) {
	if token == "" {
		return "", false, nil
	}
	ml, err := s.links.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !ml.Expires.After(s.now()) {
		return "", false, nil
	}
	deleted, err := s.links.DeleteByToken(ctx, token)
	if err != nil {
		return "", false, err
	}
	// параллельный запрос успел первым
	if !deleted {
		return "", false, nil
	}
	return ml.Email, true, nil
}

// newMagicToken: 32 случайных байта в hex.
func newMagicToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// findOrCreateUser ищет пользователя по email или создаёт беспарольного с ролью USER.
// Пустое имя заменяется локальной частью адреса.
func findOrCreateUser(ctx context.Context, users repo.UserRepository, email, name string) (*model.User, error) {
	u, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	created, err := users.CreateUser(ctx, &model.User{Email: email, Name: name, Role: model.UserRoleUser})
	if err != nil {
		// гонка двух запросов на один email
		if again, gerr := users.GetUserByEmail(ctx, email); gerr == nil {
			return again, nil
		}
		return nil, err
	}
	return created, nil
}
