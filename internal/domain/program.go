package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrProgramNotFound   = errors.New("program not found")
	ErrMalformedTemplate = errors.New("program template day numbers must be contiguous starting at 1")
)

// WorkoutType classifies a planned session within a program template.
type WorkoutType string

const (
	WorkoutTypeRest     WorkoutType = "rest"
	WorkoutTypeRecovery WorkoutType = "recovery"
	WorkoutTypePace     WorkoutType = "pace"
	WorkoutTypeVertical WorkoutType = "vertical"
	WorkoutTypeStandard WorkoutType = "standard"
	WorkoutTypeCustom   WorkoutType = "custom"
)

// TemplateEntry is one planned session in a program template.
// DayNumber is the 1-based position in the program; completion matching and
// locking both key off it, so entries must stay contiguous and ordered.
type TemplateEntry struct {
	DayNumber   int         `json:"day_number" bson:"day_number"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description" bson:"description"`
	WorkoutType WorkoutType `json:"workout_type" bson:"workout_type"`
}

// WeekNumber derives the 1-based program week for this entry.
func (e TemplateEntry) WeekNumber() int {
	return (e.DayNumber + 6) / 7
}

// IsRest reports whether this entry is a rest day. Rest days are never locked.
func (e TemplateEntry) IsRest() bool {
	return e.WorkoutType == WorkoutTypeRest
}

// Program is a catalog entry: a fixed, ordered training template independent
// of calendar dates.
type Program struct {
	ID          string          `json:"id" bson:"_id,omitempty"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Difficulty  string          `json:"difficulty" bson:"difficulty"` // "beginner", "intermediate", "advanced"
	ImageURL    string          `json:"image_url" bson:"image_url"`
	Entries     []TemplateEntry `json:"entries" bson:"entries"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

// Weeks reports the nominal length of the program in weeks.
func (p *Program) Weeks() int {
	if len(p.Entries) == 0 {
		return 0
	}
	return p.Entries[len(p.Entries)-1].WeekNumber()
}

// Validate checks the template invariant: day numbers contiguous from 1.
// A malformed template would desynchronize positional completion matching,
// so we fail loudly instead of reindexing.
func (p *Program) Validate() error {
	for i, e := range p.Entries {
		if e.DayNumber != i+1 {
			return fmt.Errorf("%w: entry %d has day_number %d", ErrMalformedTemplate, i, e.DayNumber)
		}
	}
	return nil
}

type ProgramRepository interface {
	Create(ctx context.Context, program *Program) error
	GetByID(ctx context.Context, id string) (*Program, error)
	List(ctx context.Context) ([]*Program, error)
	Update(ctx context.Context, program *Program) error
	UpdateImageURL(ctx context.Context, id string, url string) error
	Delete(ctx context.Context, id string) error
}
