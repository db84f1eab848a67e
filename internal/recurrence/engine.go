package recurrence

import (
	"fmt"
	"sort"
	"time"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the schedule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily generates one occurrence per configured time of day.
	FrequencyDaily
	// FrequencyWeekly generates one untimed occurrence on the selected weekdays.
	FrequencyWeekly
)

// Schedule describes a recurring intake pattern with a validity window.
type Schedule struct {
	ID         string
	OwnerID    string
	Frequency  Frequency
	DailyTimes []string // wall-clock times in HH:MM, used when Frequency is daily
	WeeklyDays []int    // ISO weekdays 1=Monday..7=Sunday, used when Frequency is weekly
	ValidFrom  time.Time
	ValidUntil *time.Time // nil means open-ended
}

// Candidate is one concrete dated occurrence derived from a schedule.
// TimeOfDay is empty for weekly schedules, which carry no wall-clock time.
type Candidate struct {
	Date      time.Time
	TimeOfDay string
}

// Skipped records a schedule entry that could not be expanded.
type Skipped struct {
	ScheduleID string
	Entry      string
	Reason     string
}

// Expand maps a schedule and an inclusive date window to the set of candidate
// occurrences it produces. The result is deduplicated and sorted by date, with
// timed candidates ordered by time of day. Malformed times and out-of-range
// weekdays are reported in the second return value and skipped; they never
// abort expansion. Expand performs no I/O and is deterministic for a given
// schedule and window, which is what makes repeated generation safe to dedup.
func Expand(schedule Schedule, windowStart, windowEnd time.Time) ([]Candidate, []Skipped) {
	windowStart = DateOnly(windowStart)
	windowEnd = DateOnly(windowEnd)

	var skipped []Skipped
	times, weekdays := validEntries(schedule, &skipped)

	seen := make(map[Candidate]struct{})
	candidates := make([]Candidate, 0)

	validFrom := DateOnly(schedule.ValidFrom)
	var validUntil time.Time
	if schedule.ValidUntil != nil {
		validUntil = DateOnly(*schedule.ValidUntil)
	}

	for d := windowStart; !d.After(windowEnd); d = d.AddDate(0, 0, 1) {
		if d.Before(validFrom) {
			continue
		}
		if schedule.ValidUntil != nil && d.After(validUntil) {
			continue
		}

		switch schedule.Frequency {
		case FrequencyDaily:
			for _, t := range times {
				c := Candidate{Date: d, TimeOfDay: t}
				if _, ok := seen[c]; ok {
					continue
				}
				seen[c] = struct{}{}
				candidates = append(candidates, c)
			}
		case FrequencyWeekly:
			if _, ok := weekdays[ISOWeekday(d)]; !ok {
				continue
			}
			c := Candidate{Date: d}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			candidates = append(candidates, c)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date) {
			return candidates[i].Date.Before(candidates[j].Date)
		}
		return candidates[i].TimeOfDay < candidates[j].TimeOfDay
	})

	return candidates, skipped
}

// validEntries filters the schedule's configured times and weekdays, recording
// malformed entries so callers can log them without failing the whole batch.
func validEntries(schedule Schedule, skipped *[]Skipped) ([]string, map[int]struct{}) {
	var times []string
	if schedule.Frequency == FrequencyDaily {
		times = make([]string, 0, len(schedule.DailyTimes))
		for _, raw := range schedule.DailyTimes {
			if _, err := time.Parse("15:04", raw); err != nil {
				*skipped = append(*skipped, Skipped{
					ScheduleID: schedule.ID,
					Entry:      raw,
					Reason:     "unparsable time of day",
				})
				continue
			}
			times = append(times, raw)
		}
	}

	weekdays := make(map[int]struct{}, len(schedule.WeeklyDays))
	if schedule.Frequency == FrequencyWeekly {
		for _, day := range schedule.WeeklyDays {
			if day < 1 || day > 7 {
				*skipped = append(*skipped, Skipped{
					ScheduleID: schedule.ID,
					Entry:      fmt.Sprintf("%d", day),
					Reason:     "weekday outside 1..7",
				})
				continue
			}
			weekdays[day] = struct{}{}
		}
	}

	return times, weekdays
}

// DateOnly truncates an instant to its civil date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISOWeekday returns the ISO-8601 weekday number for a date, 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int {
	day := int(t.Weekday())
	if day == 0 {
		return 7
	}
	return day
}
