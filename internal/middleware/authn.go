package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/session"
)

type contextKey string

const sessionKey contextKey = "user-session"

// Authenticate verifies the bearer token and attaches the resulting session
// to the request context. The role claim goes through the same fail-safe
// parse as every other session construction.
func Authenticate(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, session.FromIdentity(identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the authenticated session, nil if absent.
func SessionFromContext(ctx context.Context) *models.UserSession {
	s, _ := ctx.Value(sessionKey).(*models.UserSession)
	return s
}

// RequireRole guards a handler behind a role predicate such as
// Role.CanManageMembers.
func RequireRole(allowed func(models.Role) bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !allowed(s.Role) {
			respond.Error(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	}
}
