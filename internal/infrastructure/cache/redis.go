package cache

import (
	"context"
	"fmt"
	"time"

	"kasbon-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects and pings; the caller owns Close.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logger.Info("redis: connected", "addr", addr, "db", db)
	return client, nil
}

// Ping adapts a client to a health check.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}
