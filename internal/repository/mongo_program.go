package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoProgramRepository struct {
	collection *mongo.Collection
}

func NewMongoProgramRepository(db *mongo.Database) *MongoProgramRepository {
	return &MongoProgramRepository{
		collection: db.Collection("programs"),
	}
}

func (r *MongoProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	if err := program.Validate(); err != nil {
		return err
	}
	program.CreatedAt = time.Now()
	program.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		program.ID = oid.Hex()
	}
	return nil
}

func (r *MongoProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var program domain.Program
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&program)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProgramNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (r *MongoProgramRepository) List(ctx context.Context) ([]*domain.Program, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var programs []*domain.Program
	if err := cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *MongoProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	oid, err := primitive.ObjectIDFromHex(program.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	if err := program.Validate(); err != nil {
		return err
	}
	program.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        program.Name,
			"description": program.Description,
			"difficulty":  program.Difficulty,
			"entries":     program.Entries,
			"updated_at":  program.UpdatedAt,
		},
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *MongoProgramRepository) UpdateImageURL(ctx context.Context, id string, url string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"image_url":  url,
			"updated_at": time.Now(),
		},
	})
	return err
}

func (r *MongoProgramRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrProgramNotFound
	}
	return nil
}
