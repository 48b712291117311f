package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"dentixpro/internal/auth"
	"dentixpro/internal/model"
	"dentixpro/internal/store"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

// UserID returns the authenticated user id placed in ctx by Auth.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// token from Authorization: Bearer <jwt>
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" {
				writeMsg(w, http.StatusUnauthorized, "Token de acceso requerido")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				writeMsg(w, http.StatusUnauthorized, "Token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type UserLookup interface {
	UserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireRole admits requests whose user currently holds role. The role is
// read from the repository, not the token, so demotions apply immediately.
// Lookup failures other than a missing user are logged and answered with 500.
func RequireRole(users UserLookup, role model.Role, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := UserID(r.Context())
			u, err := users.UserByID(r.Context(), uid)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Error("role lookup failed", zap.String("user_id", uid), zap.Error(err))
				writeMsg(w, http.StatusInternalServerError, "Error interno del servidor")
				return
			}
			if err != nil || u.Role != role {
				writeMsg(w, http.StatusForbidden, "Acceso denegado: se requieren permisos de administrador")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeMsg(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"msg": msg})
}
