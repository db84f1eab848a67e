package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/medication-reminder/internal/persistence"
	"github.com/example/medication-reminder/internal/testfixtures"
)

func newMedicationHarness(t *testing.T) *MedicationService {
	t.Helper()

	storage := testfixtures.NewSQLiteStorage(t)
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("med")

	testfixtures.SeedUser(t, storage, "user-1", "owner@example.com")
	return NewMedicationService(storage, ids.NextFunc(), clock.NowFunc())
}

func validDailyInput() MedicationInput {
	return MedicationInput{
		Name:       "Amoxicillin",
		Dosage:     "500mg",
		Frequency:  persistence.FrequencyDaily,
		DailyTimes: []string{"08:00", "20:00"},
		StartDate:  testfixtures.ReferenceDate(),
		Active:     true,
	}
}

func TestCreateMedication(t *testing.T) {
	service := newMedicationHarness(t)
	ctx := context.Background()
	principal := Principal{UserID: "user-1"}

	medication, err := service.CreateMedication(ctx, principal, validDailyInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if medication.ID == "" {
		t.Error("expected generated medication id")
	}
	if medication.OwnerID != "user-1" {
		t.Errorf("expected owner user-1, got %q", medication.OwnerID)
	}

	reloaded, err := service.GetMedication(ctx, principal, medication.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.Name != "Amoxicillin" || len(reloaded.DailyTimes) != 2 {
		t.Errorf("unexpected stored medication: %+v", reloaded)
	}
}

func TestCreateMedication_Validation(t *testing.T) {
	service := newMedicationHarness(t)
	ctx := context.Background()
	principal := Principal{UserID: "user-1"}

	endBeforeStart := testfixtures.ReferenceDate().AddDate(0, 0, -1)

	tests := []struct {
		name   string
		mutate func(*MedicationInput)
		field  string
	}{
		{
			name:   "missing name",
			mutate: func(in *MedicationInput) { in.Name = "  " },
			field:  "name",
		},
		{
			name:   "missing start date",
			mutate: func(in *MedicationInput) { in.StartDate = time.Time{} },
			field:  "start_date",
		},
		{
			name:   "end before start",
			mutate: func(in *MedicationInput) { in.EndDate = &endBeforeStart },
			field:  "end_date",
		},
		{
			name:   "invalid daily time",
			mutate: func(in *MedicationInput) { in.DailyTimes = []string{"25:00"} },
			field:  "daily_times",
		},
		{
			name: "weekly days on daily schedule",
			mutate: func(in *MedicationInput) {
				in.WeeklyDays = []int{1}
			},
			field: "weekly_days",
		},
		{
			name: "invalid weekday",
			mutate: func(in *MedicationInput) {
				in.Frequency = persistence.FrequencyWeekly
				in.DailyTimes = nil
				in.WeeklyDays = []int{0}
			},
			field: "weekly_days",
		},
		{
			name: "daily times on weekly schedule",
			mutate: func(in *MedicationInput) {
				in.Frequency = persistence.FrequencyWeekly
				in.WeeklyDays = []int{1}
			},
			field: "daily_times",
		},
		{
			name:   "unknown frequency",
			mutate: func(in *MedicationInput) { in.Frequency = "hourly" },
			field:  "frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validDailyInput()
			tt.mutate(&input)

			_, err := service.CreateMedication(ctx, principal, input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Errorf("expected %s field error, got %v", tt.field, vErr.FieldErrors)
			}
		})
	}
}

func TestUpdateMedication(t *testing.T) {
	service := newMedicationHarness(t)
	ctx := context.Background()
	principal := Principal{UserID: "user-1"}

	medication, err := service.CreateMedication(ctx, principal, validDailyInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	input := validDailyInput()
	input.Name = "Ibuprofen"
	input.DailyTimes = []string{"12:00"}
	input.Active = false

	updated, err := service.UpdateMedication(ctx, principal, medication.ID, input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Ibuprofen" || updated.Active {
		t.Errorf("unexpected updated medication: %+v", updated)
	}

	_, err = service.UpdateMedication(ctx, principal, "missing", input)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown medication, got %v", err)
	}
}

func TestGetMedication_OwnershipScoped(t *testing.T) {
	storage := testfixtures.NewSQLiteStorage(t)
	ids := testfixtures.NewIDGenerator("med")
	ctx := context.Background()

	testfixtures.SeedUser(t, storage, "user-1", "owner@example.com")
	testfixtures.SeedUser(t, storage, "user-2", "other@example.com")
	testfixtures.SeedDailyMedication(t, storage, "med-1", "user-1", []string{"08:00"})

	service := NewMedicationService(storage, ids.NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())

	_, err := service.GetMedication(ctx, Principal{UserID: "user-2"}, "med-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign medication, got %v", err)
	}
}

func TestDeleteMedication_RemovesOccurrences(t *testing.T) {
	storage := testfixtures.NewSQLiteStorage(t)
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("id")
	ctx := context.Background()
	principal := Principal{UserID: "user-1"}

	testfixtures.SeedUser(t, storage, "user-1", "owner@example.com")
	testfixtures.SeedDailyMedication(t, storage, "med-1", "user-1", []string{"08:00"})
	testfixtures.SeedOccurrence(t, storage, "occ-1", "user-1", "med-1", testfixtures.ReferenceDate(), "08:00")

	medicationService := NewMedicationService(storage, ids.NextFunc(), clock.NowFunc())
	reminderService := NewReminderService(storage, storage, ids.NextFunc(), clock.NowFunc())

	if err := medicationService.DeleteMedication(ctx, principal, "med-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	occurrences, err := reminderService.ListForDate(ctx, principal, testfixtures.ReferenceDate())
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(occurrences) != 0 {
		t.Fatalf("expected occurrences to be removed with the medication, got %d", len(occurrences))
	}

	if err := medicationService.DeleteMedication(ctx, principal, "med-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
	}
}
