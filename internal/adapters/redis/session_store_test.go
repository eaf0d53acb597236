package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	domainauth "github.com/atelierweb/atelier-api/internal/domain/auth"
	"github.com/atelierweb/atelier-api/internal/testutil"
)

func adminSession(id string, ttl time.Duration) domainauth.Session {
	return domainauth.Session{
		ID:          id,
		UserID:      "claire",
		DisplayName: "Claire Fontaine",
		Email:       "claire@atelier.fr",
		Role:        domainauth.RoleAdmin,
		ExpiresAt:   time.Now().Add(ttl),
	}
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	sess := adminSession("sess-1", time.Hour)
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != sess.UserID || got.Role != domainauth.RoleAdmin {
		t.Errorf("Get = %+v, want saved session", got)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestSessionStore_Save_Validation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, domainauth.Session{}); err == nil {
		t.Error("empty session ID should be rejected")
	}
	if err := store.Save(ctx, adminSession("expired", -time.Minute)); err == nil {
		t.Error("expired session should be rejected")
	}
}

func TestSessionStore_Get_Missing(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get empty ID = %v, want ErrNotFound", err)
	}
}

func TestSessionStore_Delete_EmptyID(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)

	if err := store.Delete(context.Background(), ""); err != nil {
		t.Errorf("Delete empty ID = %v, want nil", err)
	}
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStoreWithPrefix(client, "atelier:session:")
	ctx := context.Background()

	sess := adminSession("sess-2", time.Hour)
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	n, err := client.Exists(ctx, "atelier:session:sess-2").Result()
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if n != 1 {
		t.Error("session should be stored under the custom prefix")
	}
}
