package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
)

// --- OccurrenceRepository implementation ---

// ExistsOccurrence reports whether an occurrence with the given natural key
// is already stored.
func (s *Storage) ExistsOccurrence(ctx context.Context, medicationID string, date time.Time, timeOfDay string) (bool, error) {
	query := `
		SELECT 1 FROM occurrences
		WHERE medication_id = ? AND scheduled_date = ? AND scheduled_time = ?
	`
	var one int
	err := s.db.QueryRowContext(ctx, query, medicationID, formatDate(date), timeOfDay).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, mapError(err)
	}
	return true, nil
}

// CreateOccurrence inserts a single occurrence. The unique index on the
// natural key rejects duplicates, which surface as ErrDuplicate.
func (s *Storage) CreateOccurrence(ctx context.Context, occurrence persistence.Occurrence) error {
	query := `
		INSERT INTO occurrences (
			id, owner_id, medication_id, scheduled_date, scheduled_time,
			completed, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		occurrence.ID,
		occurrence.OwnerID,
		occurrence.MedicationID,
		formatDate(occurrence.ScheduledDate),
		occurrence.ScheduledTime,
		boolToInt(occurrence.Completed),
		nullTimestamp(occurrence.CompletedAt),
		formatTimestamp(occurrence.CreatedAt),
		formatTimestamp(occurrence.UpdatedAt),
	)
	return mapError(err)
}

// CreateOccurrenceBatch inserts the batch inside one transaction and returns
// the number of rows actually inserted.
//
// Rows whose natural key already exists are skipped via ON CONFLICT DO
// NOTHING, so two concurrent generation runs racing to insert the same
// candidate end with exactly one stored row. Any other failure rolls the
// whole batch back, leaving no partially applied state.
func (s *Storage) CreateOccurrenceBatch(ctx context.Context, occurrences []persistence.Occurrence) (int, error) {
	if len(occurrences) == 0 {
		return 0, nil
	}

	created := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO occurrences (
				id, owner_id, medication_id, scheduled_date, scheduled_time,
				completed, completed_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(medication_id, scheduled_date, scheduled_time) DO NOTHING
		`)
		if err != nil {
			return mapError(err)
		}
		defer stmt.Close()

		for _, occurrence := range occurrences {
			result, err := stmt.ExecContext(ctx,
				occurrence.ID,
				occurrence.OwnerID,
				occurrence.MedicationID,
				formatDate(occurrence.ScheduledDate),
				occurrence.ScheduledTime,
				boolToInt(occurrence.Completed),
				nullTimestamp(occurrence.CompletedAt),
				formatTimestamp(occurrence.CreatedAt),
				formatTimestamp(occurrence.UpdatedAt),
			)
			if err != nil {
				return mapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			created += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

const occurrenceJoinColumns = `
	o.id, o.owner_id, o.medication_id, o.scheduled_date, o.scheduled_time,
	o.completed, o.completed_at, o.created_at, o.updated_at,
	m.name, m.dosage
`

// Untimed occurrences sort after every timed one on the same date.
const occurrenceOrdering = `
	ORDER BY o.scheduled_date,
		CASE WHEN o.scheduled_time = '' THEN 1 ELSE 0 END,
		o.scheduled_time,
		o.id
`

// ListOccurrencesByDate returns the owner's occurrences for one date together
// with medication display fields.
func (s *Storage) ListOccurrencesByDate(ctx context.Context, ownerID string, date time.Time) ([]persistence.OccurrenceWithMedication, error) {
	query := `
		SELECT ` + occurrenceJoinColumns + `
		FROM occurrences o
		JOIN medications m ON m.id = o.medication_id
		WHERE o.owner_id = ? AND o.scheduled_date = ?
	` + occurrenceOrdering
	return s.queryOccurrences(ctx, query, ownerID, formatDate(date))
}

// ListOccurrencesByRange returns the owner's occurrences for an inclusive
// date range together with medication display fields.
func (s *Storage) ListOccurrencesByRange(ctx context.Context, ownerID string, start, end time.Time) ([]persistence.OccurrenceWithMedication, error) {
	query := `
		SELECT ` + occurrenceJoinColumns + `
		FROM occurrences o
		JOIN medications m ON m.id = o.medication_id
		WHERE o.owner_id = ? AND o.scheduled_date >= ? AND o.scheduled_date <= ?
	` + occurrenceOrdering
	return s.queryOccurrences(ctx, query, ownerID, formatDate(start), formatDate(end))
}

// GetOccurrence retrieves an occurrence scoped to its owner. A row belonging
// to another owner is indistinguishable from a missing one.
func (s *Storage) GetOccurrence(ctx context.Context, id, ownerID string) (persistence.Occurrence, error) {
	query := `
		SELECT id, owner_id, medication_id, scheduled_date, scheduled_time,
			completed, completed_at, created_at, updated_at
		FROM occurrences
		WHERE id = ? AND owner_id = ?
	`
	var o persistence.Occurrence
	var scheduledDate, createdAt, updatedAt string
	var completedAt sql.NullString
	var completed int

	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&o.ID, &o.OwnerID, &o.MedicationID, &scheduledDate, &o.ScheduledTime,
		&completed, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Occurrence{}, mapError(err)
	}

	return fillOccurrenceFields(o, scheduledDate, completed, completedAt, createdAt, updatedAt)
}

// GetOccurrenceWithMedication is GetOccurrence joined with medication name
// and dosage.
func (s *Storage) GetOccurrenceWithMedication(ctx context.Context, id, ownerID string) (persistence.OccurrenceWithMedication, error) {
	query := `
		SELECT ` + occurrenceJoinColumns + `
		FROM occurrences o
		JOIN medications m ON m.id = o.medication_id
		WHERE o.id = ? AND o.owner_id = ?
	`
	return scanOccurrenceWithMedication(s.db.QueryRowContext(ctx, query, id, ownerID))
}

// UpdateOccurrence persists the occurrence's completion fields and updated_at.
func (s *Storage) UpdateOccurrence(ctx context.Context, occurrence persistence.Occurrence) error {
	query := `
		UPDATE occurrences
		SET completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		boolToInt(occurrence.Completed),
		nullTimestamp(occurrence.CompletedAt),
		formatTimestamp(occurrence.UpdatedAt),
		occurrence.ID,
		occurrence.OwnerID,
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

func (s *Storage) queryOccurrences(ctx context.Context, query string, args ...any) ([]persistence.OccurrenceWithMedication, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	occurrences := make([]persistence.OccurrenceWithMedication, 0)
	for rows.Next() {
		occurrence, err := scanOccurrenceWithMedication(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, occurrence)
	}
	return occurrences, rows.Err()
}

func scanOccurrenceWithMedication(row rowScanner) (persistence.OccurrenceWithMedication, error) {
	var joined persistence.OccurrenceWithMedication
	var scheduledDate, createdAt, updatedAt string
	var completedAt sql.NullString
	var completed int

	err := row.Scan(
		&joined.ID, &joined.OwnerID, &joined.MedicationID, &scheduledDate, &joined.ScheduledTime,
		&completed, &completedAt, &createdAt, &updatedAt,
		&joined.MedicationName, &joined.Dosage,
	)
	if err != nil {
		return persistence.OccurrenceWithMedication{}, mapError(err)
	}

	occurrence, err := fillOccurrenceFields(joined.Occurrence, scheduledDate, completed, completedAt, createdAt, updatedAt)
	if err != nil {
		return persistence.OccurrenceWithMedication{}, err
	}
	joined.Occurrence = occurrence
	return joined, nil
}

func fillOccurrenceFields(o persistence.Occurrence, scheduledDate string, completed int, completedAt sql.NullString, createdAt, updatedAt string) (persistence.Occurrence, error) {
	var err error
	if o.ScheduledDate, err = parseDate(scheduledDate); err != nil {
		return persistence.Occurrence{}, err
	}

	o.Completed = completed != 0
	if completedAt.Valid {
		parsed, err := parseTimestamp(completedAt.String)
		if err != nil {
			return persistence.Occurrence{}, err
		}
		o.CompletedAt = &parsed
	}

	if o.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Occurrence{}, err
	}
	if o.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Occurrence{}, err
	}
	return o, nil
}
