package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	t.Run("no session cookie", func(t *testing.T) {
		middleware := RequireAuth(&mockAuthService{})
		handler := middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not be reached")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "authentication_required", env.Error.Code)
	})

	t.Run("valid session lands in context", func(t *testing.T) {
		middleware := RequireAuth(&mockAuthService{})
		called := false
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			session, ok := GetUserSessionFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "test-user", session.UserID)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "test-session-id"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("guest is forbidden", func(t *testing.T) {
		svc := &mockAuthService{
			getSessionFunc: func(_ context.Context, sessionID string) (*domainauth.Session, error) {
				return &domainauth.Session{
					ID:        sessionID,
					Role:      domainauth.RoleGuest,
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil
			},
		}
		middleware := RequireRole(svc, domainauth.RoleAdmin)
		handler := middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not be reached")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "guest-session"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "insufficient_permissions", env.Error.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		middleware := RequireRole(&mockAuthService{}, domainauth.RoleAdmin)
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "admin-session"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("headers and ceiling", func(t *testing.T) {
		middleware := RateLimit(RateLimitParams{
			Limiter:  ratelimit.NewLimiter(ratelimit.NewMemoryStore(), discardLogger()),
			Rule:     ratelimit.Rule{Window: time.Minute, MaxRequests: 2},
			Identity: ClientIdentity{UserAgentPrefixLen: 64},
		})
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
			req.RemoteAddr = "203.0.113.9:40000"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}

		req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "rate_limited", env.Error.Code)
	})

	t.Run("different clients do not share a window", func(t *testing.T) {
		middleware := RateLimit(RateLimitParams{
			Limiter:  ratelimit.NewLimiter(ratelimit.NewMemoryStore(), discardLogger()),
			Rule:     ratelimit.Rule{Window: time.Minute, MaxRequests: 1},
			Identity: ClientIdentity{UserAgentPrefixLen: 64},
		})
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for _, addr := range []string{"203.0.113.1:1000", "203.0.113.2:1000"} {
			req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
			req.RemoteAddr = addr
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("nil limiter is a passthrough", func(t *testing.T) {
		middleware := RateLimit(RateLimitParams{})
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	})
}

func TestRecoverWritesEnvelope(t *testing.T) {
	middleware := Recover(discardLogger())
	handler := middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "boom")
}

func TestLoggingCapturesStatus(t *testing.T) {
	middleware := Logging(discardLogger())
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
