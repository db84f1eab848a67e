package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
)

func testUser(id, email string) persistence.User {
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	return persistence.User{
		ID:           id,
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRoundTrip(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	if err := storage.CreateUser(ctx, testUser("user-1", "owner@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	user, err := storage.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if user.Email != "owner@example.com" || user.DisplayName != "Test User" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := storage.GetUser(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user.DisplayName = "Renamed"
	if err := storage.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	reloaded, err := storage.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.DisplayName != "Renamed" {
		t.Errorf("expected renamed user, got %q", reloaded.DisplayName)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	if err := storage.CreateUser(ctx, testUser("user-1", "owner@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The email column collates case insensitively.
	err := storage.CreateUser(ctx, testUser("user-2", "OWNER@example.com"))
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()

	if err := storage.CreateUser(ctx, testUser("user-1", "owner@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	user, err := storage.GetUserByEmail(ctx, "Owner@Example.COM")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("expected user-1, got %q", user.ID)
	}
}

func TestSessionLifecycle(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	if err := storage.CreateUser(ctx, testUser("user-1", "owner@example.com")); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	session := persistence.Session{
		Token:     "token-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	if err := storage.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	got, err := storage.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if got.UserID != "user-1" || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("unexpected session: %+v", got)
	}

	if err := storage.DeleteSession(ctx, "token-1"); err != nil {
		t.Fatalf("delete session failed: %v", err)
	}
	if _, err := storage.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := storage.DeleteSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	storage := setupStorage(t)
	ctx := context.Background()
	now := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	if err := storage.CreateUser(ctx, testUser("user-1", "owner@example.com")); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	sessions := []persistence.Session{
		{Token: "stale", UserID: "user-1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)},
		{Token: "fresh", UserID: "user-1", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	for _, session := range sessions {
		if err := storage.CreateSession(ctx, session); err != nil {
			t.Fatalf("create session failed: %v", err)
		}
	}

	if err := storage.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, err := storage.GetSession(ctx, "stale"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected stale session removed, got %v", err)
	}
	if _, err := storage.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh session kept, got %v", err)
	}
}
