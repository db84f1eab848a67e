package persistence

import "time"

// User represents an account that owns medications and reminder occurrences.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Medication represents a medication with its recurring intake schedule.
//
// Frequency selects which pattern applies: "daily" uses DailyTimes, "weekly"
// uses WeeklyDays. The two are mutually exclusive.
type Medication struct {
	ID         string
	OwnerID    string
	Name       string
	Dosage     string
	Notes      string
	Barcode    string
	Frequency  string
	DailyTimes []string // wall-clock times in HH:MM
	WeeklyDays []int    // ISO weekdays, 1=Monday..7=Sunday
	StartDate  time.Time
	EndDate    *time.Time // nil means open-ended
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FrequencyDaily and FrequencyWeekly are the accepted Medication.Frequency values.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Occurrence represents one dated, individually completable reminder derived
// from a medication schedule.
//
// ScheduledTime is the empty string for weekly-derived occurrences, which
// carry no wall-clock time. The tuple (MedicationID, ScheduledDate,
// ScheduledTime) is the natural key; storage enforces its uniqueness.
type Occurrence struct {
	ID            string
	OwnerID       string
	MedicationID  string
	ScheduledDate time.Time
	ScheduledTime string
	Completed     bool
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OccurrenceWithMedication joins an occurrence with display fields from its
// medication for listing and completion responses.
type OccurrenceWithMedication struct {
	Occurrence
	MedicationName string
	Dosage         string
}
