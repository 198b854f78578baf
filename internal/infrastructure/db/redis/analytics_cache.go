package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 5 * time.Minute
	versionKey      = "analytics:version"
)

// AnalyticsCache stores computed analytics as JSON.
// Key format: analytics:<version>:<sha1 of the logical key>
//
// Every project or reaction write bumps the version, so entries written before
// the change are never read again and simply expire. A value is written under
// the version its lookup missed at, never the current one.
type AnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates an AnalyticsCache wrapping the given Redis client.
func NewAnalyticsCache(client *redis.Client, ttl time.Duration) *AnalyticsCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AnalyticsCache{client: client, ttl: ttl}
}

// Get decodes the entry for key into dst and reports whether it was found,
// along with the version it looked under.
func (c *AnalyticsCache) Get(ctx context.Context, key string, dst any) (int64, bool, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, fmt.Errorf("cache version: %w", err)
	}

	raw, err := c.client.Get(ctx, cacheKey(version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return 0, false, fmt.Errorf("cache decode: %w", err)
	}
	return version, true, nil
}

// Set stores value under key at the given version for the configured TTL.
func (c *AnalyticsCache) Set(ctx context.Context, version int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return c.client.Set(ctx, cacheKey(version, key), raw, c.ttl).Err()
}

// Invalidate retires every entry written so far.
func (c *AnalyticsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func cacheKey(version int64, key string) string {
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("analytics:%d:%s", version, hex.EncodeToString(sum[:]))
}
