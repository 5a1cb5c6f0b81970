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

// MongoCompletionRepository persists logged rucks. The completion log is
// append-mostly; plan builds read it back sorted by date.
type MongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates a new completion repository
func NewMongoCompletionRepository(db *mongo.Database) *MongoCompletionRepository {
	return &MongoCompletionRepository{
		collection: db.Collection("completions"),
	}
}

// EnsureIndexes creates the list index and the sparse client_id dedupe index.
func (r *MongoCompletionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "program_id", Value: 1},
				{Key: "date", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "client_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create completion indexes: %w", err)
	}
	return nil
}

func (r *MongoCompletionRepository) Create(ctx context.Context, record *domain.CompletionRecord) error {
	record.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateCompletion
		}
		return fmt.Errorf("failed to create completion record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}

	return nil
}

func (r *MongoCompletionRepository) GetByID(ctx context.Context, id string) (*domain.CompletionRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var record domain.CompletionRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("failed to get completion record: %w", err)
	}

	return &record, nil
}

func (r *MongoCompletionRepository) GetByClientID(ctx context.Context, userID, clientID string) (*domain.CompletionRecord, error) {
	var record domain.CompletionRecord
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "client_id": clientID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("failed to get completion record by client id: %w", err)
	}

	return &record, nil
}

// ListByUserAndProgram returns the user's records for one program, oldest
// first. Date ordering drives positional matching for legacy records.
func (r *MongoCompletionRepository) ListByUserAndProgram(ctx context.Context, userID, programID string) ([]*domain.CompletionRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID, "program_id": programID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list completion records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*domain.CompletionRecord, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode completion records: %w", err)
	}

	return records, nil
}

func (r *MongoCompletionRepository) CountByUserAndProgram(ctx context.Context, userID, programID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "program_id": programID})
	if err != nil {
		return 0, fmt.Errorf("failed to count completion records: %w", err)
	}

	return count, nil
}

func (r *MongoCompletionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete completion record: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrCompletionNotFound
	}

	return nil
}
