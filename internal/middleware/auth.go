package middleware

import (
	"Lura/internal/model"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
)

// TokenParser проверяет access-токен и возвращает id пользователя.
type TokenParser interface {
	ParseAccess(token string) (int64, error)
}

// UserResolver заново получает роль пользователя по id из токена.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID int64) (model.UserRole, error)
}

// WithAuth читает Bearer токен. При валидном токене и существующем пользователе
// кладёт id и роль в контекст, иначе запрос идёт дальше анонимным.
func WithAuth(parser TokenParser, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := parser.ParseAccess(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			role, err := resolver.ResolveUser(r.Context(), userID)
			if err != nil {
				if log != nil {
					log.Debugw("auth: user not resolved", "user_id", userID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserIDFromContext достаёт id пользователя, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// GetRoleFromContext достаёт глобальную роль пользователя.
func GetRoleFromContext(ctx context.Context) (model.UserRole, bool) {
	role, ok := ctx.Value(roleKey).(model.UserRole)
	return role, ok
}

// WithUserID кладёт id в контекст (для тестов хендлеров).
func WithUserID(ctx context.Context, userID int64, role model.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// RequireUser отвечает 401, если WithAuth не опознал пользователя.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			deny(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole пропускает только пользователей с одной из глобальных ролей.
func RequireRole(roles ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, "Forbidden resource")
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": status, "message": msg})
}
