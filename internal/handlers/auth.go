package handlers

import (
	"Lura/internal/config"
	"Lura/internal/service"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	auth   *service.AuthService
	links  *service.MagicLinkService
	logger *zap.SugaredLogger
	secure bool
}

func NewAuthHandler(auth *service.AuthService, links *service.MagicLinkService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		links:  links,
		logger: logger,
		secure: strings.HasPrefix(cfg.BackendURL, "https:"),
	}
}

type magicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// RequestMagicLink отправляет ссылку для входа. Ответ не зависит от доставки письма.
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.links.Request(r.Context(), req.Email, req.Name); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Magic link sent to your email"})
}

func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	target, err := h.auth.VerifyMagicLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleLogin ставит cookie со state и уводит на страницу согласия.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	target, err := h.auth.GoogleAuthURL(state)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	// сбрасываем state в любом случае
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/google", MaxAge: -1})

	if providerErr := q.Get("error"); providerErr != "" {
		http.Redirect(w, r, h.auth.SignInErrorURL(providerErr), http.StatusFound)
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		h.logger.Warnw("GoogleCallback: state mismatch", "remote", r.RemoteAddr)
		http.Redirect(w, r, h.auth.SignInErrorURL("invalid_state"), http.StatusFound)
		return
	}
	target, err := h.auth.GoogleCallback(r.Context(), q.Get("code"), "")
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), userID(r)); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Signed out successfully"})
}

func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	user, err := h.auth.Profile(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Now you can access this protected API. This is your user ID: %d", id),
		"user":    user,
	})
}
