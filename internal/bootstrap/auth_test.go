package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/atelierweb/atelier-api/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildAuthServiceDisabledWithoutRedis(t *testing.T) {
	for _, mode := range []config.AuthMode{config.AuthModeMock, config.AuthModeOAuth} {
		t.Run(string(mode), func(t *testing.T) {
			svc := BuildAuthService(AuthConfig{
				Auth: config.AuthConfig{
					Mode:       mode,
					AdminGroup: "admins",
					DevAuth: config.DevAuthConfig{
						UserID: "dev",
						Email:  "dev@example.com",
						Groups: []string{"admins"},
					},
					OAuth: config.OAuthConfig{
						ClientID:     "client-id",
						ClientSecret: "client-secret",
						DiscoveryURL: "https://issuer.example.fr",
						RedirectURL:  "https://app.example.fr/auth/callback",
						Scope:        "openid",
					},
				},
				RedisClient: nil,
				Logger:      discardLogger(),
			})
			if svc != nil {
				t.Fatalf("BuildAuthService() = %v, want nil without redis", svc)
			}
		})
	}
}

func TestBuildAuthServiceRejectsUnknownMode(t *testing.T) {
	// A constructed client never dials, so the mode switch is reached
	// without a running Redis.
	svc := BuildAuthService(AuthConfig{
		Auth:        config.AuthConfig{Mode: config.AuthMode("saml")},
		RedisClient: redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}),
		Logger:      discardLogger(),
	})
	if svc != nil {
		t.Fatalf("BuildAuthService() = %v, want nil for unknown mode", svc)
	}
}
