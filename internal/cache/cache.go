// Package cache is a thin TTL key/value layer over Redis used to memoize
// read-heavy queries. Write paths invalidate the keys they affect before
// returning, so the TTL only bounds staleness for keys nobody invalidates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when Set is called with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// keyPrefix namespaces every cache entry, e.g. cache:user:2:appointments:1.
const keyPrefix = "cache:"

// Cache wraps a Redis client with JSON encoding and a default TTL.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a cache. A non-positive defaultTTL falls back to DefaultTTL.
func New(rdb *redis.Client, defaultTTL time.Duration) *Cache {
	if rdb == nil {
		panic("cache: redis client required")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: defaultTTL}
}

// Get unmarshals the cached value into dest. The second return is false on a
// miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value as JSON under key for ttl (default TTL when ttl <= 0).
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}
	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

// InvalidatePrefix removes every key beginning with prefix. Needed where the
// writer cannot enumerate affected keys, e.g. all pages of a listing.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: invalidate prefix %s: %w", prefix, err)
	}
	return nil
}
