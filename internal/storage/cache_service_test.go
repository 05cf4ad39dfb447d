package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

func setupTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheService(NewRedisCacheFromClient(client), time.Minute), mr
}

func TestCacheService_SetGetRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	summary := models.RunSummary{
		RunID:      "run-1",
		Discovered: 7,
		New:        3,
		Updated:    2,
		SourceCounts: map[types.SourceType]int{
			types.SourceGitHub: 4,
			types.SourceRSS:    3,
		},
	}
	key := cache.GenerateCacheKey(CacheKeyLastRun)
	require.NoError(t, cache.Set(ctx, key, summary))

	var got models.RunSummary
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 4, got.SourceCounts[types.SourceGitHub])
}

func TestCacheService_MissIsNotAnError(t *testing.T) {
	cache, _ := setupTestCache(t)

	var got models.RunSummary
	found, err := cache.Get(context.Background(), "lastrun", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_TTLExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	key := cache.GenerateCacheKey(CacheKeyStats)
	require.NoError(t, cache.SetWithTTL(ctx, key, &StoreStats{Total: 5}, time.Second))

	mr.FastForward(2 * time.Second)

	var got StoreStats
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheService_InvalidateLists(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	listKey := cache.GenerateListKey(&AirdropFilters{Status: types.StatusLive})
	require.NoError(t, cache.Set(ctx, listKey, []string{"jupiter"}))
	runKey := cache.GenerateCacheKey(CacheKeyLastRun)
	require.NoError(t, cache.Set(ctx, runKey, models.RunSummary{RunID: "run-1"}))

	require.NoError(t, cache.InvalidateLists(ctx))

	var listGot []string
	found, err := cache.Get(ctx, listKey, &listGot)
	require.NoError(t, err)
	assert.False(t, found, "list entries must be dropped")

	var runGot models.RunSummary
	found, err = cache.Get(ctx, runKey, &runGot)
	require.NoError(t, err)
	assert.True(t, found, "run summary survives list invalidation")
}

func TestCacheService_ListKeyDistinguishesFilters(t *testing.T) {
	cache, _ := setupTestCache(t)

	a := cache.GenerateListKey(&AirdropFilters{Status: types.StatusLive})
	b := cache.GenerateListKey(&AirdropFilters{Status: types.StatusLive, Category: "defi"})
	assert.NotEqual(t, a, b)
}
