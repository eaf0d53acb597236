// Package devauth is a config-driven AuthProvider for local development.
// It skips the identity provider entirely: Begin points the browser
// straight at our own callback, and Exchange hands back the identity
// from configuration.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/ports"
)

const defaultSessionDuration = 8 * time.Hour

// Config describes the fake identity the provider should return.
// UserID and Email are required; Groups may be empty.
type Config struct {
	UserID          string
	Email           string
	DisplayName     string
	Groups          []string
	SessionDuration time.Duration // defaults to 8h when zero
}

// Provider implements ports.AuthProvider without talking to an IdP.
type Provider struct {
	identity        domainauth.Identity
	sessionDuration time.Duration
}

// NewProvider validates cfg and builds the dev identity up front.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}

	dur := cfg.SessionDuration
	if dur == 0 {
		dur = defaultSessionDuration
	}
	name := cfg.DisplayName
	if name == "" {
		name = cfg.UserID
	}

	return &Provider{
		identity: domainauth.Identity{
			UserID:      cfg.UserID,
			DisplayName: name,
			Email:       cfg.Email,
			Groups:      append([]string(nil), cfg.Groups...),
			ExpiresAt:   time.Now().Add(dur),
		},
		sessionDuration: dur,
	}, nil
}

// Begin returns a relative callback URL plus freshly generated state and
// nonce. The callback handler expects GET /auth/callback?code=...&state=...
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	return "/auth/callback?code=dev&state=" + state, state, nonce, nil
}

// Exchange returns the configured identity. The code, state, and nonce
// are not inspected here; the handler validates state before calling.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	// Keep long-running dev sessions usable by pushing the expiry out
	// whenever it gets close.
	if time.Until(p.identity.ExpiresAt) < 5*time.Minute {
		p.identity.ExpiresAt = time.Now().Add(p.sessionDuration)
	}
	return p.identity, nil
}

// randomString returns n URL-safe base64 characters from crypto/rand.
func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
