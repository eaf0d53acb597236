package auth

import (
	"context"
	"testing"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/ports"
)

func TestMockAuthProviderDeterministicState(t *testing.T) {
	provider := NewMockAuthProvider()

	_, state1, nonce1, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "https://app/callback"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, state2, nonce2, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: "https://app/callback"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state1 != "state-1" || state2 != "state-2" {
		t.Fatalf("expected deterministic states, got %q and %q", state1, state2)
	}
	if nonce1 != "nonce-1" || nonce2 != "nonce-2" {
		t.Fatalf("expected deterministic nonces, got %q and %q", nonce1, nonce2)
	}
}

func TestMockAuthProviderExchangeDefaults(t *testing.T) {
	provider := NewMockAuthProvider()

	identity, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.UserID != "mock-user-1" || identity.DisplayName != "Mock User" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.ExpiresAt.IsZero() {
		t.Fatal("expected expiry to be set")
	}
}

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, domainauth.Session{}); err == nil {
		t.Fatal("expected error for empty session ID")
	}

	sess := domainauth.Session{ID: "sess-1", UserID: "u-1", Role: domainauth.RoleAdmin}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u-1" || got.Role != domainauth.RoleAdmin {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaticRoleMapper(t *testing.T) {
	mapper := StaticRoleMapper{AdminGroup: "atelier-admins"}

	if got := mapper.Map([]string{"users", "atelier-admins"}); got != domainauth.RoleAdmin {
		t.Fatalf("expected admin, got %v", got)
	}
	if got := mapper.Map([]string{"users"}); got != domainauth.RoleGuest {
		t.Fatalf("expected guest, got %v", got)
	}
	if got := (StaticRoleMapper{}).Map([]string{"atelier-admins"}); got != domainauth.RoleGuest {
		t.Fatalf("expected guest with empty admin group, got %v", got)
	}
}
