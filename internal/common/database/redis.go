// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"hrdesk-automation/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection backing the processed-request registry.
// The registry works against the raw Client; this wrapper owns connection
// setup and lifecycle.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client. Timeouts are short: registry operations sit
// on the request intake path, and a slow dedup check must not stall the
// webhook response.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
