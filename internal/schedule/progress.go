package schedule

import (
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
)

// matchCompletions joins completion records to schedule entries. Records
// carrying a ProgramWorkoutDay match that day number directly (first record
// per day wins); legacy records without one fill the earliest unmatched
// entries in date order. Records for a different program are ignored, which
// covers stale logs left over from a previous enrollment.
func matchCompletions(sched []domain.ScheduledWorkout, records []*domain.CompletionRecord) map[int]*domain.CompletionRecord {
	matched := make(map[int]*domain.CompletionRecord)
	if len(sched) == 0 {
		return matched
	}
	programID := sched[0].ProgramID
	maxDay := len(sched)

	var legacy []*domain.CompletionRecord
	for _, rec := range records {
		if rec.ProgramID != programID {
			continue
		}
		if rec.ProgramWorkoutDay < 1 || rec.ProgramWorkoutDay > maxDay {
			legacy = append(legacy, rec)
			continue
		}
		if _, ok := matched[rec.ProgramWorkoutDay]; !ok {
			matched[rec.ProgramWorkoutDay] = rec
		}
	}

	// Legacy records arrive date-sorted; assign them positionally to the
	// earliest ruck days that have no record yet. Rest days are never
	// claimed, a logged ruck always belongs to a training slot.
	day := 1
	for _, rec := range legacy {
		for day <= maxDay {
			_, taken := matched[day]
			if !taken && sched[day-1].WorkoutType != domain.WorkoutTypeRest {
				break
			}
			day++
		}
		if day > maxDay {
			break
		}
		matched[day] = rec
		day++
	}

	return matched
}

// CompletedDays reports which template day numbers have a completion record,
// using the same matching rules as Track. Adapt consumes this so it never
// moves finished sessions.
func CompletedDays(sched []domain.ScheduledWorkout, records []*domain.CompletionRecord) map[int]bool {
	matched := matchCompletions(sched, records)
	days := make(map[int]bool, len(matched))
	for day := range matched {
		days[day] = true
	}
	return days
}

// Track overlays completion state onto the schedule and computes the lock
// state under sequential gating: the entry immediately after the completed
// count is unlocked, everything further ahead is locked, and rest days are
// never locked. The list length and order are untouched.
func Track(sched []domain.ScheduledWorkout, records []*domain.CompletionRecord) []domain.ScheduledWorkout {
	out := make([]domain.ScheduledWorkout, len(sched))
	copy(out, sched)

	matched := matchCompletions(out, records)
	for i := range out {
		if rec, ok := matched[out[i].DayNumber]; ok {
			out[i].IsCompleted = true
			completedAt := rec.Date
			out[i].CompletedAt = &completedAt
		}
	}

	// Only completed rucks widen the unlock window; a tagged rest-day
	// record must not unlock training further ahead.
	completedCount := 0
	for day := range matched {
		if out[day-1].WorkoutType != domain.WorkoutTypeRest {
			completedCount++
		}
	}
	for i := range out {
		switch {
		case out[i].IsCompleted:
			out[i].IsLocked = false
		case out[i].WorkoutType == domain.WorkoutTypeRest:
			out[i].IsLocked = false
		default:
			out[i].IsLocked = i+1 > completedCount+1
		}
	}

	return out
}

// TodayView filters an annotated schedule down to what the app surfaces:
// everything dated on or after today, or, once the program has no future
// sessions left, whatever was completed today. The fallback keeps the list
// from going empty between finishing a program and enrolling in the next.
func TodayView(sched []domain.ScheduledWorkout, today time.Time) []domain.ScheduledWorkout {
	day := DateOnly(today)

	var upcoming []domain.ScheduledWorkout
	for _, w := range sched {
		if !w.Date.Before(day) {
			upcoming = append(upcoming, w)
		}
	}
	if len(upcoming) > 0 {
		return upcoming
	}

	var doneToday []domain.ScheduledWorkout
	for _, w := range sched {
		if w.CompletedAt != nil && DateOnly(*w.CompletedAt).Equal(day) {
			doneToday = append(doneToday, w)
		}
	}
	return doneToday
}
