package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens — пара access/refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer подписывает и проверяет JWT (HS256, sub = id пользователя).
// Access и refresh подписываются разными секретами.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) Issue(userID int64) (Tokens, error) {
	access, err := t.sign(userID, t.accessSecret, t.accessTTL)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := t.sign(userID, t.refreshSecret, t.refreshTTL)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(userID int64, secret []byte, ttl time.Duration) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		// jti делает каждый токен уникальным даже в пределах одной секунды
		ID: uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess проверяет access-токен и возвращает id пользователя.
func (t *TokenIssuer) ParseAccess(token string) (int64, error) {
	return t.parse(token, t.accessSecret)
}

// ParseRefresh проверяет refresh-токен и возвращает id пользователя.
func (t *TokenIssuer) ParseRefresh(token string) (int64, error) {
	return t.parse(token, t.refreshSecret)
}

func (t *TokenIssuer) parse(raw string, secret []byte) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return 0, err
	}
	if !tok.Valid {
		return 0, errors.New("invalid token")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid subject")
	}
	return id, nil
}
