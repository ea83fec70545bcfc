package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenRe = regexp.MustCompile(`token=([0-9a-f]{64})`)

func magicTokenFrom(t *testing.T, s *stack) string {
	t.Helper()
	msgs := s.mail.messages()
	require.NotEmpty(t, msgs)
	m := tokenRe.FindStringSubmatch(msgs[len(msgs)-1].HTML)
	require.Len(t, m, 2, "token not found in email")
	return m[1]
}

func TestMagicLink_VerifyOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	require.NoError(t, s.magic.Request(ctx, "  Alice@Example.com ", ""))
	msgs := s.mail.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@example.com", msgs[0].To)
	assert.Equal(t, "Your Magic Link to Sign In", msgs[0].Subject)

	token := magicTokenFrom(t, s)

	redirect, err := s.authSvc.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/magic-link/callback", u.Path)
	q := u.Query()
	assert.Equal(t, "alice", q.Get("name"))
	assert.Equal(t, "USER", q.Get("role"))
	assert.NotEmpty(t, q.Get("accessToken"))
	assert.NotEmpty(t, q.Get("refreshToken"))

	// второй раз тот же токен недействителен
	redirect, err = s.authSvc.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "http://front.test/auth/invalid-link", redirect)
}

func TestMagicLink_Expired(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	s.magic.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	require.NoError(t, s.magic.Request(ctx, "bob@example.com", "Bob"))
	token := magicTokenFrom(t, s)
	s.magic.now = time.Now

	redirect, err := s.authSvc.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(redirect, "/auth/invalid-link"))
}

func TestMagicLink_EmailFailureIsSwallowed(t *testing.T) {
	s := newStack(t)
	s.mail.err = errSMTPDown
	assert.NoError(t, s.magic.Request(context.Background(), "carol@example.com", ""))
}

func TestMagicLink_EmptyEmail(t *testing.T) {
	s := newStack(t)
	err := s.magic.Request(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestAuth_RefreshRotatesHash(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	u := s.user(t, "dave@example.com")

	first, err := s.authSvc.Login(ctx, u)
	require.NoError(t, err)

	second, err := s.authSvc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, second.ID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// старый refresh после ротации не принимается
	_, err = s.authSvc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.authSvc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestAuth_RefreshRejects(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	u := s.user(t, "erin@example.com")
	res, err := s.authSvc.Login(ctx, u)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := s.authSvc.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
	t.Run("access token in place of refresh", func(t *testing.T) {
		_, err := s.authSvc.Refresh(ctx, res.AccessToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
	t.Run("after signout", func(t *testing.T) {
		require.NoError(t, s.authSvc.SignOut(ctx, u.ID))
		_, err := s.authSvc.Refresh(ctx, res.RefreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuth_ResolveUser(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	u := s.user(t, "frank@example.com")

	role, err := s.authSvc.ResolveUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "USER", string(role))

	_, err = s.authSvc.ResolveUser(ctx, 9999)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuth_GoogleCallbackWithoutProvider(t *testing.T) {
	s := newStack(t)
	redirect, err := s.authSvc.GoogleCallback(context.Background(), "", "access_denied")
	require.NoError(t, err)
	assert.Equal(t, "http://front.test/auth/signin?error=access_denied", redirect)

	_, err = s.authSvc.GoogleAuthURL("state")
	assert.ErrorIs(t, err, ErrBadRequest)
}
