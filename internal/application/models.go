package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// MedicationInput captures caller provided medication fields.
type MedicationInput struct {
	Name       string
	Dosage     string
	Notes      string
	Barcode    string
	Frequency  string
	DailyTimes []string
	WeeklyDays []int
	StartDate  time.Time
	EndDate    *time.Time
	Active     bool
}

// RegisterUserInput captures the fields required to create an account.
type RegisterUserInput struct {
	Email       string
	DisplayName string
	Password    string
}

// UpdateProfileInput captures mutable account fields.
type UpdateProfileInput struct {
	DisplayName string
}

// SessionInfo is the result of a successful login.
type SessionInfo struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
