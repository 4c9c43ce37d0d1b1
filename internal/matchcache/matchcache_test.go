package matchcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CampusReady-backend/internal/match"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(rdb, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	studentID := uuid.New()

	res := match.Result{
		OverallPercentage: 75,
		Skills:            match.SkillsBreakdown{Matched: 1, Required: 2, Percentage: 50},
		Eligibility:       match.EligibilityBreakdown{Percentage: 100},
	}

	_, ok := cache.Get(ctx, studentID, 1, 1, 1)
	require.False(t, ok, "fresh cache must miss")

	cache.Set(ctx, studentID, 1, 1, 1, res)

	got, ok := cache.Get(ctx, studentID, 1, 1, 1)
	require.True(t, ok)
	assert.Equal(t, res, got)
}

func TestCacheMissesOnVersionChange(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	studentID := uuid.New()

	cache.Set(ctx, studentID, 1, 1, 1, match.Result{OverallPercentage: 75})

	_, ok := cache.Get(ctx, studentID, 1, 2, 1)
	assert.False(t, ok, "profile edit must invalidate")

	_, ok = cache.Get(ctx, studentID, 1, 1, 2)
	assert.False(t, ok, "job edit must invalidate")

	_, ok = cache.Get(ctx, uuid.New(), 1, 1, 1)
	assert.False(t, ok, "other student must not share entries")
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	studentID := uuid.New()

	cache.Set(ctx, studentID, 1, 1, 1, match.Result{OverallPercentage: 100})
	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, studentID, 1, 1, 1)
	assert.False(t, ok)
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache

	_, ok := cache.Get(context.Background(), uuid.New(), 1, 1, 1)
	assert.False(t, ok)

	// Must not panic.
	cache.Set(context.Background(), uuid.New(), 1, 1, 1, match.Result{})
}

func TestNewDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, New("", ""))
	assert.NotNil(t, New("localhost:6379", ""))
}

func TestCacheSurvivesRedisOutage(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	studentID := uuid.New()

	mr.Close()

	// Reads degrade to misses, writes are dropped.
	_, ok := cache.Get(ctx, studentID, 1, 1, 1)
	assert.False(t, ok)
	cache.Set(ctx, studentID, 1, 1, 1, match.Result{})
}
