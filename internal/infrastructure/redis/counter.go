package redisinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps every Redis transport failure.
var ErrUnavailable = errors.New("redis unavailable")

// CounterStore exposes the atomic counter primitives the rate limiter needs.
type CounterStore struct {
	rdb redis.UniversalClient
}

func NewCounterStore(rdb redis.UniversalClient) *CounterStore {
	return &CounterStore{rdb: rdb}
}

// Incr atomically increments key and returns the new value.
func (s *CounterStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: incr %s: %v", ErrUnavailable, key, err)
	}
	return n, nil
}

func (s *CounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("%w: expire %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Get reads key without modifying it. ok is false when the key is absent.
func (s *CounterStore) Get(ctx context.Context, key string) (n int64, ok bool, err error) {
	n, err = s.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return n, true, nil
}
