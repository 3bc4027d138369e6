package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_CreateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "a@x.com", "hash1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected assigned id")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected assigned creation timestamp")
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "alice", "a@x.com", "hash1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := store.CreateUser(ctx, "alice", "other@x.com", "hash2")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user after failed insert, got %d", count)
	}
}

func TestStore_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "alice", "a@x.com", "hash1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := store.CreateUser(ctx, "bob", "a@x.com", "hash2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestStore_GetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "alice", "a@x.com", "hash1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byName, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Errorf("expected user %d by username, got %+v", created.ID, byName)
	}

	byEmail, err := store.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Errorf("expected user %d by email, got %+v", created.ID, byEmail)
	}
}

func TestStore_GetUser_Missing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.GetUserByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for missing user, got %+v", user)
	}
}
