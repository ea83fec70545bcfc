// Package oauth — вход через внешнего OAuth-провайдера (Google).
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrEmailNotVerified — провайдер не подтвердил email.
var ErrEmailNotVerified = errors.New("email is not verified by provider")

// Profile — подтверждённые данные пользователя от провайдера.
type Profile struct {
	Email string
	Name  string
}

// Provider — OAuth провайдер: ссылка на согласие и обмен кода на профиль.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Google реализует Provider поверх golang.org/x/oauth2.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" || !info.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = strings.TrimSpace(info.GivenName + " " + info.FamilyName)
	}
	return &Profile{Email: strings.ToLower(info.Email), Name: name}, nil
}
