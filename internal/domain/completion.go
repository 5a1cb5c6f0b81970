package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCompletionNotFound  = errors.New("completion record not found")
	ErrDuplicateCompletion = errors.New("completion already logged for this client id")
)

// CompletionRecord is one real logged ruck, appended when the user finishes a
// session. ClientID is a ULID minted on the phone/watch so offline logs can
// be retried safely before the server assigns a canonical ID.
//
// ProgramWorkoutDay ties the record to a template slot by position, not by
// calendar date: a user who does day 3 late or early is still day 3.
// Zero means the record predates day tagging; those are matched positionally.
type CompletionRecord struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	ClientID          string    `json:"client_id" bson:"client_id,omitempty"`
	UserID            string    `json:"user_id" bson:"user_id"`
	ProgramID         string    `json:"program_id" bson:"program_id"`
	ProgramWorkoutDay int       `json:"program_workout_day" bson:"program_workout_day"`
	Date              time.Time `json:"date" bson:"date"`
	DistanceKm        float64   `json:"distance_km" bson:"distance_km"`
	DurationSeconds   int       `json:"duration_seconds" bson:"duration_seconds"`
	LoadKg            float64   `json:"load_kg" bson:"load_kg"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

type CompletionRepository interface {
	Create(ctx context.Context, record *CompletionRecord) error
	GetByID(ctx context.Context, id string) (*CompletionRecord, error)
	GetByClientID(ctx context.Context, userID, clientID string) (*CompletionRecord, error)
	// ListByUserAndProgram returns records sorted by date ascending.
	ListByUserAndProgram(ctx context.Context, userID, programID string) ([]*CompletionRecord, error)
	CountByUserAndProgram(ctx context.Context, userID, programID string) (int64, error)
	Delete(ctx context.Context, id string) error
}
