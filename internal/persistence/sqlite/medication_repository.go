package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/medication-reminder/internal/persistence"
)

// --- MedicationRepository implementation ---

// CreateMedication inserts a new medication row.
//
// DailyTimes and WeeklyDays are stored as JSON arrays, matching the flat
// column layout of the rest of the row.
func (s *Storage) CreateMedication(ctx context.Context, medication persistence.Medication) error {
	dailyTimes, weeklyDays, err := encodeScheduleColumns(medication)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO medications (
			id, owner_id, name, dosage, notes, barcode,
			frequency, daily_times, weekly_days, start_date, end_date, active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		medication.ID,
		medication.OwnerID,
		medication.Name,
		medication.Dosage,
		medication.Notes,
		medication.Barcode,
		medication.Frequency,
		dailyTimes,
		weeklyDays,
		formatDate(medication.StartDate),
		nullDate(medication.EndDate),
		boolToInt(medication.Active),
		formatTimestamp(medication.CreatedAt),
		formatTimestamp(medication.UpdatedAt),
	)
	return mapError(err)
}

// UpdateMedication updates an existing medication, scoped to its owner.
func (s *Storage) UpdateMedication(ctx context.Context, medication persistence.Medication) error {
	dailyTimes, weeklyDays, err := encodeScheduleColumns(medication)
	if err != nil {
		return err
	}

	query := `
		UPDATE medications
		SET name = ?, dosage = ?, notes = ?, barcode = ?,
			frequency = ?, daily_times = ?, weekly_days = ?,
			start_date = ?, end_date = ?, active = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		medication.Name,
		medication.Dosage,
		medication.Notes,
		medication.Barcode,
		medication.Frequency,
		dailyTimes,
		weeklyDays,
		formatDate(medication.StartDate),
		nullDate(medication.EndDate),
		boolToInt(medication.Active),
		formatTimestamp(medication.UpdatedAt),
		medication.ID,
		medication.OwnerID,
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

const medicationColumns = `
	id, owner_id, name, dosage, notes, barcode,
	frequency, daily_times, weekly_days, start_date, end_date, active,
	created_at, updated_at
`

// GetMedication retrieves a medication by id, scoped to its owner. A row
// belonging to another owner behaves like a missing one.
func (s *Storage) GetMedication(ctx context.Context, id, ownerID string) (persistence.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = ? AND owner_id = ?`
	return scanMedication(s.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListMedications returns every medication owned by ownerID, newest first.
func (s *Storage) ListMedications(ctx context.Context, ownerID string) ([]persistence.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE owner_id = ? ORDER BY created_at DESC, id`
	return s.queryMedications(ctx, query, ownerID)
}

// ListActiveMedications returns the owner's medications with the active flag
// set. This is the read path consumed by occurrence generation.
func (s *Storage) ListActiveMedications(ctx context.Context, ownerID string) ([]persistence.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE owner_id = ? AND active = 1 ORDER BY created_at, id`
	return s.queryMedications(ctx, query, ownerID)
}

// DeleteMedication removes a medication and all of its occurrences in one
// transaction, scoped to the owner.
func (s *Storage) DeleteMedication(ctx context.Context, id, ownerID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM medications WHERE id = ? AND owner_id = ?", id, ownerID)
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

		// The ON DELETE CASCADE on occurrences handles cleanup, but run the
		// delete explicitly so the cascade does not depend on the pragma.
		if _, err := tx.ExecContext(ctx, "DELETE FROM occurrences WHERE medication_id = ?", id); err != nil {
			return mapError(err)
		}
		return nil
	})
}

func (s *Storage) queryMedications(ctx context.Context, query string, args ...any) ([]persistence.Medication, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	medications := make([]persistence.Medication, 0)
	for rows.Next() {
		medication, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		medications = append(medications, medication)
	}
	return medications, rows.Err()
}

func scanMedication(row rowScanner) (persistence.Medication, error) {
	var m persistence.Medication
	var dailyTimes, weeklyDays, startDate, createdAt, updatedAt string
	var endDate sql.NullString
	var active int

	err := row.Scan(
		&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Notes, &m.Barcode,
		&m.Frequency, &dailyTimes, &weeklyDays, &startDate, &endDate, &active,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Medication{}, mapError(err)
	}

	if err := json.Unmarshal([]byte(dailyTimes), &m.DailyTimes); err != nil {
		return persistence.Medication{}, fmt.Errorf("invalid stored daily_times for medication %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(weeklyDays), &m.WeeklyDays); err != nil {
		return persistence.Medication{}, fmt.Errorf("invalid stored weekly_days for medication %s: %w", m.ID, err)
	}

	if m.StartDate, err = parseDate(startDate); err != nil {
		return persistence.Medication{}, err
	}
	if endDate.Valid {
		parsed, err := parseDate(endDate.String)
		if err != nil {
			return persistence.Medication{}, err
		}
		m.EndDate = &parsed
	}

	m.Active = active != 0
	if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Medication{}, err
	}
	if m.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Medication{}, err
	}
	return m, nil
}

func encodeScheduleColumns(medication persistence.Medication) (string, string, error) {
	dailyTimes := medication.DailyTimes
	if dailyTimes == nil {
		dailyTimes = []string{}
	}
	weeklyDays := medication.WeeklyDays
	if weeklyDays == nil {
		weeklyDays = []int{}
	}

	encodedTimes, err := json.Marshal(dailyTimes)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode daily_times: %w", err)
	}
	encodedDays, err := json.Marshal(weeklyDays)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode weekly_days: %w", err)
	}
	return string(encodedTimes), string(encodedDays), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
