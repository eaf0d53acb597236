// Package auth holds hand-written test doubles for the auth ports.
// They are deterministic and need no codegen or external state.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/ports"
)

var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleMapper   = (*StaticRoleMapper)(nil)
)

// ErrNotFound is what the in-memory store returns for misses.
var ErrNotFound = errors.New("not found")

// MockAuthProvider plays the identity provider. Begin hands out
// sequentially numbered state/nonce pairs; Exchange returns DefaultUser
// with a fresh expiry.
type MockAuthProvider struct {
	AuthURL     string
	DefaultUser domainauth.Identity

	begins int
}

// NewMockAuthProvider returns a provider with a stock identity.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:      "mock-user-1",
			DisplayName: "Mock User",
			Email:       "mock.user@example.fr",
			Groups:      []string{"users"},
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	m.begins++
	return m.AuthURL, fmt.Sprintf("state-%d", m.begins), fmt.Sprintf("nonce-%d", m.begins), nil
}

func (m *MockAuthProvider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore keeps sessions in a map. Not safe for concurrent
// use; unit tests are single-goroutine.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

// StaticRoleMapper grants admin on AdminGroup membership and guest
// otherwise.
type StaticRoleMapper struct {
	AdminGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if m.AdminGroup == "" {
		return domainauth.RoleGuest
	}
	for _, g := range groups {
		if g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	return domainauth.RoleGuest
}
