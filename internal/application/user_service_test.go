package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/medication-reminder/internal/testfixtures"
)

func newUserHarness(t *testing.T) *UserService {
	t.Helper()

	storage := testfixtures.NewSQLiteStorage(t)
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("user")
	return NewUserService(storage, ids.NextFunc(), clock.NowFunc())
}

func TestRegister(t *testing.T) {
	service := newUserHarness(t)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterUserInput{
		Email:       "  Owner@Example.COM ",
		DisplayName: " Owner ",
		Password:    "correct horse battery",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if user.Email != "owner@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.DisplayName != "Owner" {
		t.Errorf("expected trimmed display name, got %q", user.DisplayName)
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %q", user.PasswordHash)
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("password must not be stored in clear text")
	}
}

func TestRegister_Validation(t *testing.T) {
	service := newUserHarness(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterUserInput
		field string
	}{
		{
			name:  "missing email",
			input: RegisterUserInput{DisplayName: "Owner", Password: "long enough"},
			field: "email",
		},
		{
			name:  "email without at sign",
			input: RegisterUserInput{Email: "owner.example.com", DisplayName: "Owner", Password: "long enough"},
			field: "email",
		},
		{
			name:  "missing display name",
			input: RegisterUserInput{Email: "owner@example.com", Password: "long enough"},
			field: "display_name",
		},
		{
			name:  "short password",
			input: RegisterUserInput{Email: "owner@example.com", DisplayName: "Owner", Password: "short"},
			field: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(ctx, tt.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Errorf("expected %s field error, got %v", tt.field, vErr.FieldErrors)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service := newUserHarness(t)
	ctx := context.Background()

	input := RegisterUserInput{
		Email:       "owner@example.com",
		DisplayName: "Owner",
		Password:    "correct horse battery",
	}
	if _, err := service.Register(ctx, input); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	// The email column is case insensitive.
	input.Email = "OWNER@example.com"
	_, err := service.Register(ctx, input)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	service := newUserHarness(t)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterUserInput{
		Email:       "owner@example.com",
		DisplayName: "Owner",
		Password:    "correct horse battery",
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	principal := Principal{UserID: user.ID}

	updated, err := service.UpdateProfile(ctx, principal, UpdateProfileInput{DisplayName: "New Name"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DisplayName != "New Name" {
		t.Errorf("expected updated display name, got %q", updated.DisplayName)
	}

	reloaded, err := service.GetProfile(ctx, principal)
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if reloaded.DisplayName != "New Name" {
		t.Errorf("expected persisted display name, got %q", reloaded.DisplayName)
	}

	_, err = service.UpdateProfile(ctx, principal, UpdateProfileInput{DisplayName: "  "})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	_, err = service.GetProfile(ctx, Principal{UserID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown principal, got %v", err)
	}
}
