package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// MedicationRepository exposes CRUD operations for medications, scoped to the
// owning user.
type MedicationRepository interface {
	CreateMedication(ctx context.Context, medication Medication) error
	UpdateMedication(ctx context.Context, medication Medication) error
	GetMedication(ctx context.Context, id, ownerID string) (Medication, error)
	ListMedications(ctx context.Context, ownerID string) ([]Medication, error)
	ListActiveMedications(ctx context.Context, ownerID string) ([]Medication, error)
	// DeleteMedication removes a medication together with its occurrences.
	DeleteMedication(ctx context.Context, id, ownerID string) error
}

// OccurrenceRepository stores reminder occurrences keyed by id with lookup by
// natural key and by owner/date.
type OccurrenceRepository interface {
	// ExistsOccurrence reports whether the natural key is already present.
	ExistsOccurrence(ctx context.Context, medicationID string, date time.Time, timeOfDay string) (bool, error)
	// CreateOccurrence inserts a single occurrence, returning ErrDuplicate when
	// the natural key already exists.
	CreateOccurrence(ctx context.Context, occurrence Occurrence) error
	// CreateOccurrenceBatch inserts the batch inside one transaction, silently
	// skipping rows whose natural key already exists, and returns the number of
	// rows actually inserted. A failure rolls the whole batch back.
	CreateOccurrenceBatch(ctx context.Context, occurrences []Occurrence) (int, error)
	// ListOccurrencesByDate returns the owner's occurrences for one date,
	// ordered by time of day with untimed occurrences last.
	ListOccurrencesByDate(ctx context.Context, ownerID string, date time.Time) ([]OccurrenceWithMedication, error)
	// ListOccurrencesByRange returns the owner's occurrences for an inclusive
	// date range, ordered by date then time of day with untimed occurrences last.
	ListOccurrencesByRange(ctx context.Context, ownerID string, start, end time.Time) ([]OccurrenceWithMedication, error)
	// GetOccurrence performs an owner-scoped lookup. An occurrence belonging to
	// a different owner is indistinguishable from a missing one.
	GetOccurrence(ctx context.Context, id, ownerID string) (Occurrence, error)
	// GetOccurrenceWithMedication is GetOccurrence joined with medication
	// display fields.
	GetOccurrenceWithMedication(ctx context.Context, id, ownerID string) (OccurrenceWithMedication, error)
	// UpdateOccurrence persists mutated completion fields and updated_at.
	UpdateOccurrence(ctx context.Context, occurrence Occurrence) error
}
