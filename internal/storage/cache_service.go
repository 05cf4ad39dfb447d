package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CacheService provides high-level caching for list queries and the last
// discovery run summary. Cache misses are never errors.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyAirdropList is for filtered airdrop list results
	CacheKeyAirdropList CacheKeyType = "airdrops"
	// CacheKeyLastRun is for the most recent discovery run summary
	CacheKeyLastRun CacheKeyType = "lastrun"
	// CacheKeyStats is for aggregate store statistics
	CacheKeyStats CacheKeyType = "stats"
)

// GenerateCacheKey generates a cache key for a given type and parameters
// Format: <type>:<param1>:<param2>:...
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	normalizedParams := make([]string, len(params))
	for i, param := range params {
		normalizedParams[i] = strings.ToLower(param)
	}

	parts := append([]string{string(keyType)}, normalizedParams...)
	return strings.Join(parts, ":")
}

// GenerateListKey generates a cache key for a filtered list query
// Format: airdrops:<status>:<category>:<friction>:<verified>:<featured>:<search>
func (c *CacheService) GenerateListKey(filters *AirdropFilters) string {
	if filters == nil {
		return c.GenerateCacheKey(CacheKeyAirdropList, "all")
	}
	verified, featured := "any", "any"
	if filters.Verified != nil {
		verified = fmt.Sprintf("%t", *filters.Verified)
	}
	if filters.Featured != nil {
		featured = fmt.Sprintf("%t", *filters.Featured)
	}
	return c.GenerateCacheKey(CacheKeyAirdropList,
		string(filters.Status),
		filters.Category,
		string(filters.Friction),
		verified,
		featured,
		filters.Search,
		fmt.Sprintf("%d", filters.Limit),
		fmt.Sprintf("%d", filters.Offset),
	)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, ttl)
}

// Get retrieves a value from cache and deserializes it into dest.
// Returns false on a cache miss.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if err.Error() == "redis: nil" {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// InvalidateLists drops every cached list query. Called after any write to
// the airdrop store so readers never see stale listings past one TTL.
func (c *CacheService) InvalidateLists(ctx context.Context) error {
	if err := c.redis.DelByPattern(ctx, string(CacheKeyAirdropList)+":*"); err != nil {
		return fmt.Errorf("failed to invalidate list cache: %w", err)
	}
	return c.redis.Del(ctx, c.GenerateCacheKey(CacheKeyStats))
}
