package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/domain"
	"github.com/The-KGPian-Game-Theory-Society-KGTS/site-backend/internal/security"
)

type stubResolver struct {
	principal *domain.Account
	err       error
	lastRaw   string
}

func (s *stubResolver) ResolvePrincipal(_ context.Context, raw string) (*domain.Account, error) {
	s.lastRaw = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(t *testing.T, sawPrincipal *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			*sawPrincipal = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionGuardMissingToken(t *testing.T) {
	guard := NewSessionGuard(&stubResolver{}, discardLogger())
	var saw bool
	h := guard.Middleware()(okHandler(t, &saw))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if saw {
		t.Fatal("handler must not run")
	}
}

func TestSessionGuardRejectionIsNormalized(t *testing.T) {
	guard := NewSessionGuard(&stubResolver{err: errors.New("token expired at 2026-01-02")}, discardLogger())
	var saw bool
	h := guard.Middleware()(okHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	// the internal reason stays in logs, never in the body
	if body := rr.Body.String(); strings.Contains(body, "expired at") || strings.Contains(body, "2026") {
		t.Fatalf("internal failure detail leaked: %s", body)
	}
}

func TestSessionGuardCookiePrecedesHeader(t *testing.T) {
	resolver := &stubResolver{principal: &domain.Account{ID: primitive.NewObjectID()}}
	guard := NewSessionGuard(resolver, discardLogger())
	var saw bool
	h := guard.Middleware()(okHandler(t, &saw))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resolver.lastRaw != "from-cookie" {
		t.Fatalf("cookie must win over header, resolver saw %q", resolver.lastRaw)
	}
	if !saw {
		t.Fatal("principal missing from request context")
	}
}

func TestRequireAdmin(t *testing.T) {
	var ran bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no principal", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("member", func(t *testing.T) {
		ran = false
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &domain.Account{Role: domain.RoleMember}))
		rr := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden || ran {
			t.Fatalf("expected 403 without handler run, got %d ran=%v", rr.Code, ran)
		}
	})

	t.Run("admin", func(t *testing.T) {
		ran = false
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &domain.Account{Role: domain.RoleAdmin}))
		rr := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || !ran {
			t.Fatalf("expected 200 with handler run, got %d ran=%v", rr.Code, ran)
		}
	})
}
