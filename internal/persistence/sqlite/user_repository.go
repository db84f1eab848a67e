package sqlite

import (
	"context"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
)

// --- UserRepository implementation ---

// CreateUser stores a new account. Email uniqueness is enforced by the schema.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		formatTimestamp(user.CreatedAt),
		formatTimestamp(user.UpdatedAt),
	)
	return mapError(err)
}

// UpdateUser updates an existing account.
func (s *Storage) UpdateUser(ctx context.Context, user persistence.User) error {
	query := `
		UPDATE users
		SET email = ?, display_name = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		formatTimestamp(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves an account by id.
func (s *Storage) GetUser(ctx context.Context, id string) (persistence.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves an account by email address, case-insensitively.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanUser(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	if err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
		return persistence.User{}, mapError(err)
	}

	var err error
	if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

// --- SessionRepository implementation ---

// CreateSession stores a new authentication session.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		formatTimestamp(session.ExpiresAt),
		formatTimestamp(session.CreatedAt),
	)
	return mapError(err)
}

// GetSession retrieves a session by its token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	query := `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = ?
	`
	var session persistence.Session
	var expiresAt, createdAt string

	err := s.db.QueryRowContext(ctx, query, token).Scan(&session.Token, &session.UserID, &expiresAt, &createdAt)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTimestamp(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// DeleteSession removes a session by its token.
func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired before reference.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", formatTimestamp(reference))
	return mapError(err)
}
