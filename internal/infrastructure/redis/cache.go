package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache stores JSON-encoded query results under caller-chosen keys.
// Writers invalidate by prefix next to the mutation that stales the data.
type ListCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewListCache(rdb redis.UniversalClient, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *ListCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *ListCache) Set(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *ListCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: del %s: %v", ErrUnavailable, iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan %s*: %v", ErrUnavailable, prefix, err)
	}
	return nil
}
