package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
)

// UserRepository captures the persistence interactions needed by the service.
type UserRepository interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
}

// UserService manages account registration and profiles.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for account operations.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger is NewUserService with an explicit base logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Register creates a new account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "user", "register")

	vErr := &ValidationError{}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email address is required")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return persistence.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := persistence.User{
		ID:           s.idGenerator(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.User{}, ErrAlreadyExists
		}
		return persistence.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// GetProfile returns the principal's own account.
func (s *UserService) GetProfile(ctx context.Context, principal Principal) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, ErrNotFound
		}
		return persistence.User{}, err
	}
	return user, nil
}

// UpdateProfile updates the principal's mutable account fields.
func (s *UserService) UpdateProfile(ctx context.Context, principal Principal, input UpdateProfileInput) (persistence.User, error) {
	if s == nil {
		return persistence.User{}, fmt.Errorf("UserService is nil")
	}

	if strings.TrimSpace(input.DisplayName) == "" {
		vErr := &ValidationError{}
		vErr.add("display_name", "display name is required")
		return persistence.User{}, vErr
	}

	user, err := s.GetProfile(ctx, principal)
	if err != nil {
		return persistence.User{}, err
	}

	user.DisplayName = strings.TrimSpace(input.DisplayName)
	user.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.User{}, ErrNotFound
		}
		return persistence.User{}, err
	}
	return user, nil
}
