package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
	"github.com/example/medication-reminder/internal/recurrence"
)

// Horizon bounds accepted by occurrence generation, in days.
const (
	MinHorizonDays = 1
	MaxHorizonDays = 90
)

// MedicationDirectory exposes the schedule lookups needed by generation.
type MedicationDirectory interface {
	ListActiveMedications(ctx context.Context, ownerID string) ([]persistence.Medication, error)
}

// OccurrenceStore captures the persistence interactions needed by the service.
type OccurrenceStore interface {
	CreateOccurrenceBatch(ctx context.Context, occurrences []persistence.Occurrence) (int, error)
	ListOccurrencesByDate(ctx context.Context, ownerID string, date time.Time) ([]persistence.OccurrenceWithMedication, error)
	ListOccurrencesByRange(ctx context.Context, ownerID string, start, end time.Time) ([]persistence.OccurrenceWithMedication, error)
	GetOccurrence(ctx context.Context, id, ownerID string) (persistence.Occurrence, error)
	GetOccurrenceWithMedication(ctx context.Context, id, ownerID string) (persistence.OccurrenceWithMedication, error)
	UpdateOccurrence(ctx context.Context, occurrence persistence.Occurrence) error
}

// ReminderService materializes recurring medication schedules into dated
// occurrences and manages their completion lifecycle.
type ReminderService struct {
	occurrences OccurrenceStore
	medications MedicationDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReminderService wires dependencies for reminder operations.
func NewReminderService(occurrences OccurrenceStore, medications MedicationDirectory, idGenerator func() string, now func() time.Time) *ReminderService {
	return NewReminderServiceWithLogger(occurrences, medications, idGenerator, now, nil)
}

// NewReminderServiceWithLogger is NewReminderService with an explicit base logger.
func NewReminderServiceWithLogger(occurrences OccurrenceStore, medications MedicationDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReminderService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		occurrences: occurrences,
		medications: medications,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// GenerateOccurrences expands the principal's active medication schedules over
// the next horizonDays days, starting today, and persists every occurrence not
// already present. It returns the number of newly created occurrences.
//
// Generation is idempotent: the natural-key constraint recognizes previously
// created occurrences, so repeating a call (or racing a concurrent one) never
// produces duplicates. The batch commits atomically; a storage failure leaves
// no partial state behind.
func (s *ReminderService) GenerateOccurrences(ctx context.Context, principal Principal, horizonDays int) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("ReminderService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reminder", "generate_occurrences", "owner_id", principal.UserID)

	if horizonDays < MinHorizonDays || horizonDays > MaxHorizonDays {
		vErr := &ValidationError{}
		vErr.add("horizon_days", fmt.Sprintf("must be between %d and %d", MinHorizonDays, MaxHorizonDays))
		return 0, vErr
	}

	windowStart := recurrence.DateOnly(s.now())
	windowEnd := windowStart.AddDate(0, 0, horizonDays-1)

	medications, err := s.medications.ListActiveMedications(ctx, principal.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to load active medications: %w", err)
	}

	now := s.now()
	batch := make([]persistence.Occurrence, 0)
	for _, medication := range medications {
		schedule, ok := scheduleFromMedication(medication)
		if !ok {
			logger.WarnContext(ctx, "skipping medication with unknown frequency",
				"medication_id", medication.ID, "frequency", medication.Frequency)
			continue
		}

		candidates, skipped := recurrence.Expand(schedule, windowStart, windowEnd)
		for _, entry := range skipped {
			logger.WarnContext(ctx, "skipping malformed schedule entry",
				"medication_id", entry.ScheduleID, "entry", entry.Entry, "reason", entry.Reason)
		}

		for _, candidate := range candidates {
			batch = append(batch, persistence.Occurrence{
				ID:            s.idGenerator(),
				OwnerID:       principal.UserID,
				MedicationID:  medication.ID,
				ScheduledDate: candidate.Date,
				ScheduledTime: candidate.TimeOfDay,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
	}

	created, err := s.occurrences.CreateOccurrenceBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("failed to persist occurrences: %w", err)
	}

	logger.InfoContext(ctx, "occurrence generation completed",
		"horizon_days", horizonDays, "candidates", len(batch), "created", created)
	return created, nil
}

// ListForDate returns the principal's occurrences for a single date, joined
// with medication display fields, timed occurrences first.
func (s *ReminderService) ListForDate(ctx context.Context, principal Principal, date time.Time) ([]persistence.OccurrenceWithMedication, error) {
	if s == nil {
		return nil, fmt.Errorf("ReminderService is nil")
	}
	occurrences, err := s.occurrences.ListOccurrencesByDate(ctx, principal.UserID, recurrence.DateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}
	return occurrences, nil
}

// ListForRange returns the principal's occurrences for an inclusive date
// range, ordered by date then time of day.
func (s *ReminderService) ListForRange(ctx context.Context, principal Principal, start, end time.Time) ([]persistence.OccurrenceWithMedication, error) {
	if s == nil {
		return nil, fmt.Errorf("ReminderService is nil")
	}

	start = recurrence.DateOnly(start)
	end = recurrence.DateOnly(end)
	if end.Before(start) {
		vErr := &ValidationError{}
		vErr.add("end_date", "must not be before start_date")
		return nil, vErr
	}

	occurrences, err := s.occurrences.ListOccurrencesByRange(ctx, principal.UserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}
	return occurrences, nil
}

// CompleteOccurrence marks an occurrence as taken. Completing an already
// completed occurrence refreshes its completion timestamp.
func (s *ReminderService) CompleteOccurrence(ctx context.Context, principal Principal, occurrenceID string) (persistence.OccurrenceWithMedication, error) {
	return s.setCompletion(ctx, principal, occurrenceID, true)
}

// UncompleteOccurrence reverts an occurrence to pending, clearing its
// completion timestamp.
func (s *ReminderService) UncompleteOccurrence(ctx context.Context, principal Principal, occurrenceID string) (persistence.OccurrenceWithMedication, error) {
	return s.setCompletion(ctx, principal, occurrenceID, false)
}

func (s *ReminderService) setCompletion(ctx context.Context, principal Principal, occurrenceID string, completed bool) (persistence.OccurrenceWithMedication, error) {
	if s == nil {
		return persistence.OccurrenceWithMedication{}, fmt.Errorf("ReminderService is nil")
	}
	operation := "complete_occurrence"
	if !completed {
		operation = "uncomplete_occurrence"
	}
	logger := serviceLogger(ctx, s.logger, "reminder", operation,
		"owner_id", principal.UserID, "occurrence_id", occurrenceID)

	occurrence, err := s.occurrences.GetOccurrence(ctx, occurrenceID, principal.UserID)
	if err != nil {
		return persistence.OccurrenceWithMedication{}, mapOccurrenceRepoError(err)
	}

	now := s.now()
	occurrence.Completed = completed
	if completed {
		occurrence.CompletedAt = &now
	} else {
		occurrence.CompletedAt = nil
	}
	occurrence.UpdatedAt = now

	if err := s.occurrences.UpdateOccurrence(ctx, occurrence); err != nil {
		return persistence.OccurrenceWithMedication{}, mapOccurrenceRepoError(err)
	}

	joined, err := s.occurrences.GetOccurrenceWithMedication(ctx, occurrenceID, principal.UserID)
	if err != nil {
		return persistence.OccurrenceWithMedication{}, mapOccurrenceRepoError(err)
	}

	logger.InfoContext(ctx, "occurrence completion updated", "completed", completed)
	return joined, nil
}

// scheduleFromMedication converts a stored medication into the expander's
// schedule shape. The second return value is false for unknown frequencies.
func scheduleFromMedication(medication persistence.Medication) (recurrence.Schedule, bool) {
	schedule := recurrence.Schedule{
		ID:         medication.ID,
		OwnerID:    medication.OwnerID,
		DailyTimes: medication.DailyTimes,
		WeeklyDays: medication.WeeklyDays,
		ValidFrom:  medication.StartDate,
		ValidUntil: medication.EndDate,
	}

	switch medication.Frequency {
	case persistence.FrequencyDaily:
		schedule.Frequency = recurrence.FrequencyDaily
	case persistence.FrequencyWeekly:
		schedule.Frequency = recurrence.FrequencyWeekly
	default:
		return recurrence.Schedule{}, false
	}
	return schedule, true
}

func mapOccurrenceRepoError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
