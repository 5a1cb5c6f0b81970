package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrScheduleConfigNotFound = errors.New("schedule config not found")
	ErrAlreadyEnrolled        = errors.New("user is already enrolled in a program")
	ErrInvalidPreferredDay    = errors.New("preferred days must be ISO weekdays 1 through 7")
)

// Workout visibility states derived per entry. Never stored; recomputed on
// every plan build.
const (
	WorkoutStatusLocked    = "locked"
	WorkoutStatusUnlocked  = "unlocked"
	WorkoutStatusCompleted = "completed"
)

// ScheduledWorkout is a template entry mapped onto a calendar date for one
// user's enrollment. Dates are midnight-normalized UTC.
type ScheduledWorkout struct {
	ProgramID   string      `json:"program_id"`
	DayNumber   int         `json:"day_number"`
	WeekNumber  int         `json:"week_number"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	WorkoutType WorkoutType `json:"workout_type"`
	Date        time.Time   `json:"date"`
	IsCompleted bool        `json:"is_completed"`
	IsLocked    bool        `json:"is_locked"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Status derives the lifecycle state: locked, unlocked or completed.
func (w *ScheduledWorkout) Status() string {
	switch {
	case w.IsCompleted:
		return WorkoutStatusCompleted
	case w.IsLocked:
		return WorkoutStatusLocked
	default:
		return WorkoutStatusUnlocked
	}
}

// ScheduleConfig holds one user's enrollment: which program, when it started,
// and which ISO weekdays (1=Monday .. 7=Sunday) they train on. An empty
// PreferredDays set means the Tue/Thu/Sun default applies at generation time.
type ScheduleConfig struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	UserID        string    `json:"user_id" bson:"user_id"`
	ProgramID     string    `json:"program_id" bson:"program_id"`
	StartDate     time.Time `json:"start_date" bson:"start_date"`
	PreferredDays []int     `json:"preferred_days" bson:"preferred_days"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

type ScheduleConfigRepository interface {
	Upsert(ctx context.Context, cfg *ScheduleConfig) error
	GetByUser(ctx context.Context, userID string) (*ScheduleConfig, error)
	Delete(ctx context.Context, userID string) error
}
