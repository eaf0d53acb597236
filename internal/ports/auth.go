// Package ports holds the interfaces the auth stack is wired through.
// Concrete implementations live under internal/adapters; internal/service
// composes them into the login flow.
package ports

import (
	"context"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
)

// BeginInput is the input to AuthProvider.Begin.
type BeginInput struct {
	// RedirectURL is the callback the provider should send the browser
	// back to once the user has authenticated.
	RedirectURL string
}

// ExchangeInput is the input to AuthProvider.Exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider drives a login flow against an identity provider.
type AuthProvider interface {
	// Begin returns the provider's authorization URL together with the
	// opaque state and nonce minted for this attempt. The caller stashes
	// state and nonce so Exchange can verify them.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange redeems the authorization code, checks state and nonce,
	// and returns the verified identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists admin sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper decides which application role a set of provider groups
// grants.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
