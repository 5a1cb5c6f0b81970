package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleConfigRepository persists one enrollment document per user.
// A unique index on user_id enforces the single-enrollment rule.
type MongoScheduleConfigRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleConfigRepository creates a new schedule config repository
func NewMongoScheduleConfigRepository(db *mongo.Database) *MongoScheduleConfigRepository {
	return &MongoScheduleConfigRepository{
		collection: db.Collection("schedule_configs"),
	}
}

// EnsureIndexes creates the unique user_id index.
func (r *MongoScheduleConfigRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule config index: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the user's enrollment in one operation.
func (r *MongoScheduleConfigRepository) Upsert(ctx context.Context, cfg *domain.ScheduleConfig) error {
	now := time.Now()
	cfg.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"program_id":     cfg.ProgramID,
			"start_date":     cfg.StartDate,
			"preferred_days": cfg.PreferredDays,
			"updated_at":     cfg.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":    cfg.UserID,
			"created_at": now,
		},
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": cfg.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule config: %w", err)
	}

	if result.UpsertedID != nil {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			cfg.ID = oid.Hex()
		}
		cfg.CreatedAt = now
	}

	return nil
}

// GetByUser retrieves the user's enrollment, if any.
func (r *MongoScheduleConfigRepository) GetByUser(ctx context.Context, userID string) (*domain.ScheduleConfig, error) {
	var cfg domain.ScheduleConfig
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrScheduleConfigNotFound
		}
		return nil, fmt.Errorf("failed to get schedule config: %w", err)
	}

	return &cfg, nil
}

// Delete removes the user's enrollment.
func (r *MongoScheduleConfigRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule config: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrScheduleConfigNotFound
	}

	return nil
}
