package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	MaxRequests = 60
	Window      = 60 * time.Second

	keyPrefix = "rate:"
)

// UserKey identifies an authenticated caller.
func UserKey(username string) string { return "USER_" + username }

// IPKey identifies an anonymous caller by source address.
func IPKey(addr string) string { return "IP_" + addr }

type counterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Get(ctx context.Context, key string) (int64, bool, error)
}

// Limiter is a fixed-window counter per identity key. The window starts at the
// first request and is not realigned by later ones.
type Limiter struct {
	store counterStore
	max   int64
	ttl   time.Duration
}

func NewLimiter(store counterStore) *Limiter {
	return &Limiter{store: store, max: MaxRequests, ttl: Window}
}

// Allow counts one request against key. On a store failure it reports
// allowed=true together with the error; the caller decides whether to log it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := keyPrefix + key
	n, err := l.store.Incr(ctx, k)
	if err != nil {
		return true, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if n == 1 {
		if err := l.store.Expire(ctx, k, l.ttl); err != nil {
			return true, fmt.Errorf("rate limit %s: %w", key, err)
		}
	}
	return n <= l.max, nil
}

// Remaining reads the counter without incrementing it.
func (l *Limiter) Remaining(ctx context.Context, key string) (int, error) {
	n, ok, err := l.store.Get(ctx, keyPrefix+key)
	if err != nil {
		return int(l.max), fmt.Errorf("rate remaining %s: %w", key, err)
	}
	if !ok {
		return int(l.max), nil
	}
	if left := l.max - n; left > 0 {
		return int(left), nil
	}
	return 0, nil
}

func (l *Limiter) Window() time.Duration { return l.ttl }
