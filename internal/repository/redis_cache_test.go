package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCacheRepository(client), mr
}

func TestRedisCacheRepository_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
		Days int    `json:"days"`
	}

	require.NoError(t, cache.Set(ctx, "program:id:abc", payload{Name: "Ruck Foundations", Days: 28}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "program:id:abc", &got))
	assert.Equal(t, "Ruck Foundations", got.Name)
	assert.Equal(t, 28, got.Days)
}

func TestRedisCacheRepository_GetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got string
	err := cache.Get(context.Background(), "no-such-key", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheRepository_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user:today:u1", []string{"day 1"}, 2*time.Minute))

	mr.FastForward(3 * time.Minute)

	var got []string
	err := cache.Get(ctx, "user:today:u1", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCacheRepository_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "b", 2, time.Minute))

	require.NoError(t, cache.Delete(ctx, "a", "b"))

	var got int
	assert.ErrorIs(t, cache.Get(ctx, "a", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "b", &got), ErrCacheMiss)
}

func TestRedisCacheRepository_InvalidateUserPlan(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user:plan:u1", "plan", time.Minute))
	require.NoError(t, cache.Set(ctx, "user:today:u1", "today", time.Minute))
	require.NoError(t, cache.Set(ctx, "user:plan:u2", "other", time.Minute))

	require.NoError(t, cache.InvalidateUserPlan(ctx, "u1"))

	var got string
	assert.ErrorIs(t, cache.Get(ctx, "user:plan:u1", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "user:today:u1", &got), ErrCacheMiss)
	require.NoError(t, cache.Get(ctx, "user:plan:u2", &got))
	assert.Equal(t, "other", got)
}

func TestRedisCacheRepository_DeleteByPattern(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "program:id:a", 1, time.Minute))
	require.NoError(t, cache.Set(ctx, "program:id:b", 2, time.Minute))
	require.NoError(t, cache.Set(ctx, "program:list", 3, time.Minute))

	require.NoError(t, cache.DeleteByPattern(ctx, "program:id:*"))

	var got int
	assert.ErrorIs(t, cache.Get(ctx, "program:id:a", &got), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "program:id:b", &got), ErrCacheMiss)
	require.NoError(t, cache.Get(ctx, "program:list", &got))
}
