package testfixtures

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
	"github.com/example/medication-reminder/internal/persistence/sqlite"
)

// NewSQLiteStorage constructs a migrated Storage backed by a temporary
// database file, registering cleanup with the provided testing.TB.
func NewSQLiteStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "medreminder.db")

	storage, err := sqlite.Open("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	tb.Cleanup(func() {
		_ = storage.Close()
	})
	return storage
}

// SeedUser inserts a user row with placeholder credentials.
func SeedUser(tb testing.TB, storage *sqlite.Storage, id, email string) persistence.User {
	tb.Helper()

	now := ReferenceTime()
	user := persistence.User{
		ID:           id,
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := storage.CreateUser(context.Background(), user); err != nil {
		tb.Fatalf("failed to seed user %s: %v", id, err)
	}
	return user
}

// SeedDailyMedication inserts an active daily medication starting at the
// reference date.
func SeedDailyMedication(tb testing.TB, storage *sqlite.Storage, id, ownerID string, times []string) persistence.Medication {
	tb.Helper()

	now := ReferenceTime()
	medication := persistence.Medication{
		ID:         id,
		OwnerID:    ownerID,
		Name:       "Amoxicillin",
		Dosage:     "500mg",
		Frequency:  persistence.FrequencyDaily,
		DailyTimes: times,
		StartDate:  ReferenceDate(),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := storage.CreateMedication(context.Background(), medication); err != nil {
		tb.Fatalf("failed to seed medication %s: %v", id, err)
	}
	return medication
}

// SeedWeeklyMedication inserts an active weekly medication starting at the
// reference date.
func SeedWeeklyMedication(tb testing.TB, storage *sqlite.Storage, id, ownerID string, days []int) persistence.Medication {
	tb.Helper()

	now := ReferenceTime()
	medication := persistence.Medication{
		ID:         id,
		OwnerID:    ownerID,
		Name:       "Vitamin D",
		Dosage:     "1000IU",
		Frequency:  persistence.FrequencyWeekly,
		WeeklyDays: days,
		StartDate:  ReferenceDate(),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := storage.CreateMedication(context.Background(), medication); err != nil {
		tb.Fatalf("failed to seed medication %s: %v", id, err)
	}
	return medication
}

// SeedOccurrence inserts a pending occurrence row.
func SeedOccurrence(tb testing.TB, storage *sqlite.Storage, id, ownerID, medicationID string, date time.Time, timeOfDay string) persistence.Occurrence {
	tb.Helper()

	now := ReferenceTime()
	occurrence := persistence.Occurrence{
		ID:            id,
		OwnerID:       ownerID,
		MedicationID:  medicationID,
		ScheduledDate: date,
		ScheduledTime: timeOfDay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := storage.CreateOccurrence(context.Background(), occurrence); err != nil {
		tb.Fatalf("failed to seed occurrence %s: %v", id, err)
	}
	return occurrence
}
