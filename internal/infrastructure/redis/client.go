package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/go-library-cms/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client and pings it once so a bad address is
// reported at startup rather than on the first request.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}
