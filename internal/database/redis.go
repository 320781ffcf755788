package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/rs/zerolog"
)

// NewRedisClient connects to the Redis instance at url and verifies it with
// a ping.
func NewRedisClient(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.WithContext(ctx).Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("redis connection established")

	return client, nil
}
