// Package schedule implements the training-plan engine: expanding a program
// template onto calendar dates, rebalancing overdue sessions, and overlaying
// completion and lock state. Everything here is a pure function of its
// inputs; callers supply the clock.
package schedule

import (
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
)

// DefaultPreferredDays is the fallback training cadence (Tuesday, Thursday,
// Sunday as ISO weekdays) used when a user has not picked days.
var DefaultPreferredDays = []int{2, 4, 7}

// DateOnly normalizes a timestamp to midnight UTC. All schedule dates are
// day-granular; comparing anything else is a bug.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ISOWeekday returns the ISO-8601 weekday number (Monday=1 .. Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// normalizeDays converts a preferred-day list into a set, substituting the
// default cadence for an empty or all-invalid input.
func normalizeDays(days []int) map[int]bool {
	set := make(map[int]bool, len(days))
	for _, d := range days {
		if d >= 1 && d <= 7 {
			set[d] = true
		}
	}
	if len(set) == 0 {
		for _, d := range DefaultPreferredDays {
			set[d] = true
		}
	}
	return set
}

// Generate expands the program template into dated workouts, one entry per
// preferred training day, walking forward from the enrollment start date
// (inclusive). Entries are placed strictly in template order; nothing is
// skipped or reordered. An empty template yields an empty schedule, which is
// a valid steady state, not an error.
func Generate(program *domain.Program, cfg *domain.ScheduleConfig) ([]domain.ScheduledWorkout, error) {
	if err := program.Validate(); err != nil {
		return nil, err
	}
	if len(program.Entries) == 0 {
		return []domain.ScheduledWorkout{}, nil
	}

	days := normalizeDays(cfg.PreferredDays)
	out := make([]domain.ScheduledWorkout, 0, len(program.Entries))

	day := DateOnly(cfg.StartDate)
	for _, entry := range program.Entries {
		for !days[ISOWeekday(day)] {
			day = day.AddDate(0, 0, 1)
		}
		out = append(out, domain.ScheduledWorkout{
			ProgramID:   program.ID,
			DayNumber:   entry.DayNumber,
			WeekNumber:  entry.WeekNumber(),
			Title:       entry.Title,
			Description: entry.Description,
			WorkoutType: entry.WorkoutType,
			Date:        day,
		})
		day = day.AddDate(0, 0, 1)
	}

	return out, nil
}

// nextTrainingDay returns the first date on or after from whose weekday is in
// the preferred set.
func nextTrainingDay(from time.Time, days map[int]bool) time.Time {
	day := DateOnly(from)
	for !days[ISOWeekday(day)] {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
