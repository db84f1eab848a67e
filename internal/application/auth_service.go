package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
)

// SessionStore captures the persistence interactions needed by the service.
type SessionStore interface {
	CreateSession(ctx context.Context, session persistence.Session) error
	GetSession(ctx context.Context, token string) (persistence.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// CredentialStore exposes the account lookup needed for login.
type CredentialStore interface {
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
}

// AuthService issues and validates opaque session tokens.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionStore
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication operations.
func NewAuthService(credentials CredentialStore, sessions SessionStore, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger is NewAuthService with an explicit base logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionStore, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// Login verifies the credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (SessionInfo, error) {
	if s == nil {
		return SessionInfo{}, fmt.Errorf("AuthService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "auth", "login")

	user, err := s.credentials.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return SessionInfo{}, ErrInvalidCredentials
		}
		return SessionInfo{}, err
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return SessionInfo{}, ErrInvalidCredentials
		}
		return SessionInfo{}, err
	}

	now := s.now()
	session := persistence.Session{
		Token:     s.tokenGenerator(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return SessionInfo{}, fmt.Errorf("failed to create session: %w", err)
	}

	// Opportunistic cleanup; stale rows are harmless if this fails.
	_ = s.sessions.DeleteExpiredSessions(ctx, now)

	logger.InfoContext(ctx, "session created", "user_id", user.ID)
	return SessionInfo{Token: session.Token, UserID: user.ID, ExpiresAt: session.ExpiresAt}, nil
}

// ValidateSession resolves a token to the principal it authenticates.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}

	if !s.now().Before(session.ExpiresAt) {
		_ = s.sessions.DeleteSession(ctx, token)
		return Principal{}, ErrSessionExpired
	}

	return Principal{UserID: session.UserID}, nil
}

// Logout revokes the session identified by token. Revoking an unknown token
// is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	return nil
}
