package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpand_Daily(t *testing.T) {
	t.Parallel()

	schedule := Schedule{
		ID:         "med-1",
		Frequency:  FrequencyDaily,
		DailyTimes: []string{"08:00", "20:00"},
		ValidFrom:  date(2025, time.March, 1),
	}

	// 2025-03-03 is a Monday.
	candidates, skipped := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 5))
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped entries, got %v", skipped)
	}
	if len(candidates) != 6 {
		t.Fatalf("expected 6 candidates (2 per day over 3 days), got %d", len(candidates))
	}

	first := candidates[0]
	if !first.Date.Equal(date(2025, time.March, 3)) || first.TimeOfDay != "08:00" {
		t.Errorf("expected first candidate 2025-03-03 08:00, got %v %q", first.Date, first.TimeOfDay)
	}
	last := candidates[5]
	if !last.Date.Equal(date(2025, time.March, 5)) || last.TimeOfDay != "20:00" {
		t.Errorf("expected last candidate 2025-03-05 20:00, got %v %q", last.Date, last.TimeOfDay)
	}
}

func TestExpand_Weekly(t *testing.T) {
	t.Parallel()

	schedule := Schedule{
		ID:         "med-1",
		Frequency:  FrequencyWeekly,
		WeeklyDays: []int{1, 3, 5},
		ValidFrom:  date(2025, time.March, 1),
	}

	// Window covers Monday 2025-03-03 through Sunday 2025-03-09.
	candidates, skipped := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 9))
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped entries, got %v", skipped)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates (Mon/Wed/Fri), got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.TimeOfDay != "" {
			t.Errorf("weekly candidate should be untimed, got %q", c.TimeOfDay)
		}
	}
	want := []time.Time{date(2025, time.March, 3), date(2025, time.March, 5), date(2025, time.March, 7)}
	for i, c := range candidates {
		if !c.Date.Equal(want[i]) {
			t.Errorf("candidate %d: expected %v, got %v", i, want[i], c.Date)
		}
	}
}

func TestExpand_ValidityWindow(t *testing.T) {
	t.Parallel()

	t.Run("skips dates before valid_from", func(t *testing.T) {
		t.Parallel()

		schedule := Schedule{
			Frequency:  FrequencyDaily,
			DailyTimes: []string{"09:00"},
			ValidFrom:  date(2025, time.March, 5),
		}

		candidates, _ := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 6))
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates on/after valid_from, got %d", len(candidates))
		}
		if !candidates[0].Date.Equal(date(2025, time.March, 5)) {
			t.Errorf("expected first candidate on valid_from, got %v", candidates[0].Date)
		}
	})

	t.Run("skips dates after valid_until", func(t *testing.T) {
		t.Parallel()

		until := date(2025, time.March, 4)
		schedule := Schedule{
			Frequency:  FrequencyDaily,
			DailyTimes: []string{"09:00"},
			ValidFrom:  date(2025, time.March, 1),
			ValidUntil: &until,
		}

		candidates, _ := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 10))
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates through valid_until inclusive, got %d", len(candidates))
		}
		if !candidates[1].Date.Equal(until) {
			t.Errorf("expected last candidate on valid_until, got %v", candidates[1].Date)
		}
	})

	t.Run("absent valid_until is open-ended", func(t *testing.T) {
		t.Parallel()

		schedule := Schedule{
			Frequency:  FrequencyDaily,
			DailyTimes: []string{"09:00"},
			ValidFrom:  date(2025, time.March, 1),
		}

		candidates, _ := Expand(schedule, date(2030, time.January, 1), date(2030, time.January, 3))
		if len(candidates) != 3 {
			t.Fatalf("expected expansion far in the future, got %d candidates", len(candidates))
		}
	})
}

func TestExpand_EmptySetsYieldNothing(t *testing.T) {
	t.Parallel()

	daily := Schedule{Frequency: FrequencyDaily, ValidFrom: date(2025, time.March, 1)}
	candidates, skipped := Expand(daily, date(2025, time.March, 3), date(2025, time.March, 9))
	if len(candidates) != 0 || len(skipped) != 0 {
		t.Errorf("daily schedule without times should expand to nothing, got %d/%d", len(candidates), len(skipped))
	}

	weekly := Schedule{Frequency: FrequencyWeekly, ValidFrom: date(2025, time.March, 1)}
	candidates, skipped = Expand(weekly, date(2025, time.March, 3), date(2025, time.March, 9))
	if len(candidates) != 0 || len(skipped) != 0 {
		t.Errorf("weekly schedule without weekdays should expand to nothing, got %d/%d", len(candidates), len(skipped))
	}
}

func TestExpand_SkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	schedule := Schedule{
		ID:         "med-1",
		Frequency:  FrequencyDaily,
		DailyTimes: []string{"08:00", "25:99", "oops"},
		ValidFrom:  date(2025, time.March, 1),
	}

	candidates, skipped := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 3))
	if len(candidates) != 1 {
		t.Fatalf("expected the valid time to survive, got %d candidates", len(candidates))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped entries, got %d", len(skipped))
	}
	for _, s := range skipped {
		if s.ScheduleID != "med-1" {
			t.Errorf("skipped entry should carry the schedule id, got %q", s.ScheduleID)
		}
	}

	weekly := Schedule{
		ID:         "med-2",
		Frequency:  FrequencyWeekly,
		WeeklyDays: []int{0, 3, 8},
		ValidFrom:  date(2025, time.March, 1),
	}
	candidates, skipped = Expand(weekly, date(2025, time.March, 3), date(2025, time.March, 9))
	if len(candidates) != 1 {
		t.Fatalf("expected only Wednesday to survive, got %d candidates", len(candidates))
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped weekdays, got %d", len(skipped))
	}
}

func TestExpand_DeduplicatesWithinCall(t *testing.T) {
	t.Parallel()

	schedule := Schedule{
		Frequency:  FrequencyDaily,
		DailyTimes: []string{"08:00", "08:00"},
		ValidFrom:  date(2025, time.March, 1),
	}

	candidates, _ := Expand(schedule, date(2025, time.March, 3), date(2025, time.March, 3))
	if len(candidates) != 1 {
		t.Errorf("duplicate configured times should collapse, got %d candidates", len(candidates))
	}
}

func TestISOWeekday(t *testing.T) {
	t.Parallel()

	if got := ISOWeekday(date(2025, time.March, 3)); got != 1 {
		t.Errorf("Monday should map to 1, got %d", got)
	}
	if got := ISOWeekday(date(2025, time.March, 9)); got != 7 {
		t.Errorf("Sunday should map to 7, got %d", got)
	}
}
