package bootstrap

import (
	"log/slog"

	"github.com/atelierweb/atelier-api/config"
	"github.com/atelierweb/atelier-api/internal/adapters/authroles"
	"github.com/atelierweb/atelier-api/internal/adapters/devauth"
	"github.com/atelierweb/atelier-api/internal/adapters/oidc"
	redisadapter "github.com/atelierweb/atelier-api/internal/adapters/redis"
	"github.com/atelierweb/atelier-api/internal/service"
	"github.com/redis/go-redis/v9"
)

// AuthConfig carries what BuildAuthService needs to assemble admin auth.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService assembles the auth service for the configured mode.
// A nil return means auth is disabled; callers serve the public site
// without the back office rather than failing startup.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	// Sessions live in Redis regardless of mode, so no Redis means no auth.
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	sessions := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")
	roles := authroles.GroupRoleMapper{AdminGroup: cfg.Auth.AdminGroup}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg, sessions, roles)
	case config.AuthModeOAuth:
		return buildOAuthService(cfg, sessions, roles)
	default:
		return nil
	}
}

func buildDevAuthService(
	cfg AuthConfig,
	sessions *redisadapter.SessionStore,
	roles authroles.GroupRoleMapper,
) *service.AuthService {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID: cfg.Auth.DevAuth.UserID,
		Email:  cfg.Auth.DevAuth.Email,
		Groups: cfg.Auth.DevAuth.Groups,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Roles:    roles,
	})
}

func buildOAuthService(
	cfg AuthConfig,
	sessions *redisadapter.SessionStore,
	roles authroles.GroupRoleMapper,
) *service.AuthService {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		LogoutURL:    oauth.LogoutURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Roles:    roles,
	})
}
