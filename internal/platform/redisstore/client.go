package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/platesnap/platesnap-api/internal/config"
)

// connectTimeout bounds the initial liveness check against Redis.
const connectTimeout = 5 * time.Second

// NewClient creates a Redis client from the given configuration and
// verifies connectivity with a bounded ping before returning it.
// The caller owns the client and must Close it on shutdown.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		// Close the client to release the pool before reporting failure.
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
