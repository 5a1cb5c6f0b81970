package schedule

import (
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
)

// Adapt rebalances a generated schedule against real elapsed time: sessions
// the user has fallen behind on are pushed forward onto the preferred-day
// cadence so that incomplete work is never dated in the past. Completed
// entries (identified by day number) keep their dates. The entry order never
// changes and no entry is ever dropped; if nothing is overdue the schedule
// comes back as-is. Running Adapt on its own output is a no-op.
func Adapt(sched []domain.ScheduledWorkout, completedDays map[int]bool, today time.Time, preferredDays []int) []domain.ScheduledWorkout {
	if len(sched) == 0 {
		return sched
	}

	days := normalizeDays(preferredDays)
	out := make([]domain.ScheduledWorkout, len(sched))
	copy(out, sched)

	// cursor is the earliest date the next incomplete session may occupy.
	cursor := DateOnly(today)
	for i := range out {
		if completedDays[out[i].DayNumber] {
			// Done already; its date is history and only constrains what
			// comes after it.
			if d := out[i].Date.AddDate(0, 0, 1); d.After(cursor) {
				cursor = d
			}
			continue
		}
		if out[i].Date.Before(cursor) {
			out[i].Date = nextTrainingDay(cursor, days)
		}
		cursor = out[i].Date.AddDate(0, 0, 1)
	}

	return out
}
