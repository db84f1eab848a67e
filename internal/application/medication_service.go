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

// MedicationRepository captures the persistence interactions needed by the service.
type MedicationRepository interface {
	CreateMedication(ctx context.Context, medication persistence.Medication) error
	UpdateMedication(ctx context.Context, medication persistence.Medication) error
	GetMedication(ctx context.Context, id, ownerID string) (persistence.Medication, error)
	ListMedications(ctx context.Context, ownerID string) ([]persistence.Medication, error)
	DeleteMedication(ctx context.Context, id, ownerID string) error
}

// MedicationService orchestrates validation and persistence for medication
// schedules. It is the write side of the schedule store the reminder engine
// reads from.
type MedicationService struct {
	medications MedicationRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMedicationService wires dependencies for medication operations.
func NewMedicationService(medications MedicationRepository, idGenerator func() string, now func() time.Time) *MedicationService {
	return NewMedicationServiceWithLogger(medications, idGenerator, now, nil)
}

// NewMedicationServiceWithLogger is NewMedicationService with an explicit base logger.
func NewMedicationServiceWithLogger(medications MedicationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MedicationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MedicationService{
		medications: medications,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateMedication validates the input before delegating to persistence.
func (s *MedicationService) CreateMedication(ctx context.Context, principal Principal, input MedicationInput) (persistence.Medication, error) {
	if s == nil {
		return persistence.Medication{}, fmt.Errorf("MedicationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "medication", "create_medication", "owner_id", principal.UserID)

	vErr := &ValidationError{}
	validateMedicationInput(input, vErr)
	if vErr.HasErrors() {
		return persistence.Medication{}, vErr
	}

	now := s.now()
	medication := persistence.Medication{
		ID:         s.idGenerator(),
		OwnerID:    principal.UserID,
		Name:       strings.TrimSpace(input.Name),
		Dosage:     strings.TrimSpace(input.Dosage),
		Notes:      input.Notes,
		Barcode:    strings.TrimSpace(input.Barcode),
		Frequency:  input.Frequency,
		DailyTimes: input.DailyTimes,
		WeeklyDays: input.WeeklyDays,
		StartDate:  dateOnly(input.StartDate),
		EndDate:    normalizeEndDate(input.EndDate),
		Active:     input.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.medications.CreateMedication(ctx, medication); err != nil {
		return persistence.Medication{}, fmt.Errorf("failed to create medication: %w", err)
	}

	logger.InfoContext(ctx, "medication created", "medication_id", medication.ID)
	return medication, nil
}

// UpdateMedication applies validation before updating persistence state.
// Existing occurrences are left untouched; only future generation reflects
// the new schedule.
func (s *MedicationService) UpdateMedication(ctx context.Context, principal Principal, medicationID string, input MedicationInput) (persistence.Medication, error) {
	if s == nil {
		return persistence.Medication{}, fmt.Errorf("MedicationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "medication", "update_medication",
		"owner_id", principal.UserID, "medication_id", medicationID)

	existing, err := s.medications.GetMedication(ctx, medicationID, principal.UserID)
	if err != nil {
		return persistence.Medication{}, mapMedicationRepoError(err)
	}

	vErr := &ValidationError{}
	validateMedicationInput(input, vErr)
	if vErr.HasErrors() {
		return persistence.Medication{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Dosage = strings.TrimSpace(input.Dosage)
	updated.Notes = input.Notes
	updated.Barcode = strings.TrimSpace(input.Barcode)
	updated.Frequency = input.Frequency
	updated.DailyTimes = input.DailyTimes
	updated.WeeklyDays = input.WeeklyDays
	updated.StartDate = dateOnly(input.StartDate)
	updated.EndDate = normalizeEndDate(input.EndDate)
	updated.Active = input.Active
	updated.UpdatedAt = s.now()

	if err := s.medications.UpdateMedication(ctx, updated); err != nil {
		return persistence.Medication{}, mapMedicationRepoError(err)
	}

	logger.InfoContext(ctx, "medication updated")
	return updated, nil
}

// GetMedication retrieves one of the principal's medications.
func (s *MedicationService) GetMedication(ctx context.Context, principal Principal, medicationID string) (persistence.Medication, error) {
	if s == nil {
		return persistence.Medication{}, fmt.Errorf("MedicationService is nil")
	}
	medication, err := s.medications.GetMedication(ctx, medicationID, principal.UserID)
	if err != nil {
		return persistence.Medication{}, mapMedicationRepoError(err)
	}
	return medication, nil
}

// ListMedications enumerates the principal's medications.
func (s *MedicationService) ListMedications(ctx context.Context, principal Principal) ([]persistence.Medication, error) {
	if s == nil {
		return nil, fmt.Errorf("MedicationService is nil")
	}
	medications, err := s.medications.ListMedications(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

// DeleteMedication removes a medication together with its occurrences.
func (s *MedicationService) DeleteMedication(ctx context.Context, principal Principal, medicationID string) error {
	if s == nil {
		return fmt.Errorf("MedicationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "medication", "delete_medication",
		"owner_id", principal.UserID, "medication_id", medicationID)

	if err := s.medications.DeleteMedication(ctx, medicationID, principal.UserID); err != nil {
		return mapMedicationRepoError(err)
	}

	logger.InfoContext(ctx, "medication deleted")
	return nil
}

// validateMedicationInput mirrors the expander's rules so stored schedules
// are well formed before generation ever sees them.
func validateMedicationInput(input MedicationInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.EndDate != nil && !input.StartDate.IsZero() && dateOnly(*input.EndDate).Before(dateOnly(input.StartDate)) {
		vErr.add("end_date", "end date must not be before start date")
	}

	switch input.Frequency {
	case persistence.FrequencyDaily:
		for _, raw := range input.DailyTimes {
			if _, err := time.Parse("15:04", raw); err != nil {
				vErr.add("daily_times", fmt.Sprintf("%q is not a valid HH:MM time", raw))
				break
			}
		}
		if len(input.WeeklyDays) > 0 {
			vErr.add("weekly_days", "weekly days are not allowed for a daily schedule")
		}
	case persistence.FrequencyWeekly:
		for _, day := range input.WeeklyDays {
			if day < 1 || day > 7 {
				vErr.add("weekly_days", fmt.Sprintf("%d is not a valid ISO weekday", day))
				break
			}
		}
		if len(input.DailyTimes) > 0 {
			vErr.add("daily_times", "daily times are not allowed for a weekly schedule")
		}
	default:
		vErr.add("frequency", "frequency must be daily or weekly")
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeEndDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := dateOnly(*t)
	return &normalized
}

func mapMedicationRepoError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
