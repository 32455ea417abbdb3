package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/http/response"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalResolver turns a raw access token into the current account
// state. Resolution hits the store, so revocations apply immediately.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, rawAccess string) (*domain.Account, error)
}

// SessionGuard authenticates requests from the access-token cookie,
// falling back to an Authorization bearer header. Every failure is
// normalized to 401 with the real reason kept in the logs.
type SessionGuard struct {
	resolver PrincipalResolver
	logger   *slog.Logger
}

func NewSessionGuard(resolver PrincipalResolver, logger *slog.Logger) *SessionGuard {
	return &SessionGuard{resolver: resolver, logger: logger}
}

func (g *SessionGuard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerOrCookieToken(r)
			if raw == "" {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
				return
			}
			principal, err := g.resolver.ResolvePrincipal(r.Context(), raw)
			if err != nil {
				g.logger.WarnContext(r.Context(), "session rejected", "error", err.Error())
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired session", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin sits behind the guard and rejects non-admin principals.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		if !principal.IsAdmin() {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, principal *domain.Account) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func PrincipalFromContext(ctx context.Context) (*domain.Account, bool) {
	principal, ok := ctx.Value(principalKey).(*domain.Account)
	return principal, ok && principal != nil
}
