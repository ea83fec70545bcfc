package service

import (
	"Lura/internal/model"
	"Lura/internal/oauth"
	"Lura/internal/repo"
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService — вход по magic link и OAuth, обновление и отзыв токенов.
type AuthService struct {
	users       repo.UserRepository
	links       *MagicLinkService
	tokens      *TokenIssuer
	google      oauth.Provider
	frontendURL string
	logger      *zap.SugaredLogger
}

// NewAuthService; google может быть nil, если OAuth не настроен.
func NewAuthService(users repo.UserRepository, links *MagicLinkService, tokens *TokenIssuer, google oauth.Provider, frontendURL string, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:       users,
		links:       links,
		tokens:      tokens,
		google:      google,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// LoginResult — выданные токены и краткие данные пользователя.
type LoginResult struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Role         model.UserRole `json:"role"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// Login выдаёт пару токенов и сохраняет хеш refresh-токена.
func (s *AuthService) Login(ctx context.Context, user *model.User) (*LoginResult, error) {
	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	hash, err := hashToken(pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshHash(ctx, user.ID, &hash); err != nil {
		return nil, err
	}
	name := user.Name
	if name == "" {
		name = "User"
	}
	return &LoginResult{
		ID:           user.ID,
		Name:         name,
		Role:         user.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// VerifyMagicLink погашает токен и возвращает адрес редиректа на фронтенд.
// Неизвестный или просроченный токен ведёт на страницу недействительной ссылки.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (string, error) {
	email, ok, err := s.links.Consume(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return s.frontendURL + "/auth/invalid-link", nil
	}
	user, err := findOrCreateUser(ctx, s.users, email, "")
	if err != nil {
		return "", err
	}
	res, err := s.Login(ctx, user)
	if err != nil {
		return "", err
	}
	s.logger.Infow("Magic link login", "user_id", user.ID)
	return s.callbackURL("/api/auth/magic-link/callback", res), nil
}

// GoogleEnabled сообщает, настроен ли вход через Google.
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil
}

func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", badRequestf("Google login is not configured")
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback завершает OAuth. Ошибка провайдера возвращает пользователя на страницу входа без токенов.
func (s *AuthService) GoogleCallback(ctx context.Context, code, providerErr string) (string, error) {
	if providerErr != "" {
		return s.SignInErrorURL(providerErr), nil
	}
	if s.google == nil {
		return "", badRequestf("Google login is not configured")
	}
	if code == "" {
		return s.SignInErrorURL("missing_code"), nil
	}
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warnw("GoogleCallback: exchange failed", "error", err)
		return s.SignInErrorURL("oauth_failed"), nil
	}
	user, err := findOrCreateUser(ctx, s.users, normalizeEmail(profile.Email), profile.Name)
	if err != nil {
		return "", err
	}
	res, err := s.Login(ctx, user)
	if err != nil {
		return "", err
	}
	s.logger.Infow("Google login", "user_id", user.ID)
	return s.callbackURL("/api/auth/google/callback", res), nil
}

// SignInErrorURL строит адрес страницы входа с кодом ошибки.
func (s *AuthService) SignInErrorURL(code string) string {
	return s.frontendURL + "/auth/signin?error=" + url.QueryEscape(code)
}

func (s *AuthService) callbackURL(path string, res *LoginResult) string {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(res.ID, 10))
	q.Set("name", res.Name)
	q.Set("accessToken", res.AccessToken)
	q.Set("refreshToken", res.RefreshToken)
	q.Set("role", string(res.Role))
	return s.frontendURL + path + "?" + q.Encode()
}

// Refresh проверяет refresh-токен, сверяет его с сохранённым хешем и выдаёт новую пару.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, unauthorizedf("Refresh token is required")
	}
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthorized, Message: "Invalid refresh token", Err: err}
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorizedf("User not found")
		}
		return nil, err
	}
	if user.HashedRefreshToken == nil || !verifyToken(refreshToken, *user.HashedRefreshToken) {
		return nil, unauthorizedf("Invalid refresh token")
	}
	return s.Login(ctx, user)
}

// SignOut стирает хеш refresh-токена; выданные refresh-токены перестают работать.
func (s *AuthService) SignOut(ctx context.Context, userID int64) error {
	if err := s.users.SetRefreshHash(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return unauthorizedf("User not found")
		}
		return err
	}
	return nil
}

// ResolveUser заново получает пользователя по id из access-токена (для middleware).
func (s *AuthService) ResolveUser(ctx context.Context, userID int64) (model.UserRole, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", unauthorizedf("User not found")
		}
		return "", err
	}
	return user.Role, nil
}

// Profile возвращает данные текущего пользователя.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("User not found")
		}
		return nil, err
	}
	return user, nil
}
