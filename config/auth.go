package config

import (
	"fmt"
	"strings"
)

// AuthMode selects how admins sign in to the back office.
type AuthMode string

const (
	// AuthModeOAuth authenticates against an OIDC identity provider.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock returns a fixed dev identity; never use outside
	// local development.
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText lets env parse AUTH_MODE directly into an AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	switch v := strings.ToLower(string(text)); v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig holds the OIDC client settings for admin login.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"atelier"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"atelier"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig is the identity handed out when Mode is mock.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"admins"          envSeparator:";"`
}

// AuthConfig groups everything the auth stack reads from the environment.
type AuthConfig struct {
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth applies when Mode is oauth, DevAuth when Mode is mock.
	OAuth   OAuthConfig   `envPrefix:"OAUTH_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the IdP group required for back-office access.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`
}
