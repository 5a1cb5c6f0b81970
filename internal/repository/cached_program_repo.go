package repository

import (
	"context"
	"time"

	"github.com/ArtlessApps/ruckplan/internal/domain"
)

const (
	programByIDKeyPrefix = "program:id:"
	programListKey       = "program:list"
	programCacheTTL      = 5 * time.Minute
)

// CachedProgramRepository wraps MongoProgramRepository with Redis caching.
// The catalog is read on every plan build and changes rarely, so this sits
// in front of mongo for all reads.
type CachedProgramRepository struct {
	mongo *MongoProgramRepository
	cache *RedisCacheRepository
}

// NewCachedProgramRepository creates a new cached program repository
func NewCachedProgramRepository(mongo *MongoProgramRepository, cache *RedisCacheRepository) *CachedProgramRepository {
	return &CachedProgramRepository{
		mongo: mongo,
		cache: cache,
	}
}

// GetByID retrieves a program with caching
func (r *CachedProgramRepository) GetByID(ctx context.Context, id string) (*domain.Program, error) {
	key := programByIDKeyPrefix + id

	var program domain.Program
	if err := r.cache.Get(ctx, key, &program); err == nil {
		return &program, nil
	}

	result, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, programCacheTTL)

	return result, nil
}

// List retrieves the full catalog with caching
func (r *CachedProgramRepository) List(ctx context.Context) ([]*domain.Program, error) {
	var programs []*domain.Program
	if err := r.cache.Get(ctx, programListKey, &programs); err == nil {
		return programs, nil
	}

	result, err := r.mongo.List(ctx)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, programListKey, result, programCacheTTL)

	return result, nil
}

// Create creates a program and invalidates the list cache
func (r *CachedProgramRepository) Create(ctx context.Context, program *domain.Program) error {
	if err := r.mongo.Create(ctx, program); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, programListKey)
	return nil
}

// Update updates a program and invalidates caches
func (r *CachedProgramRepository) Update(ctx context.Context, program *domain.Program) error {
	if err := r.mongo.Update(ctx, program); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, programByIDKeyPrefix+program.ID, programListKey)
	return nil
}

// UpdateImageURL updates a program's image and invalidates caches
func (r *CachedProgramRepository) UpdateImageURL(ctx context.Context, id string, url string) error {
	if err := r.mongo.UpdateImageURL(ctx, id, url); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, programByIDKeyPrefix+id, programListKey)
	return nil
}

// Delete deletes a program and invalidates caches
func (r *CachedProgramRepository) Delete(ctx context.Context, id string) error {
	if err := r.mongo.Delete(ctx, id); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, programByIDKeyPrefix+id, programListKey)
	return nil
}
