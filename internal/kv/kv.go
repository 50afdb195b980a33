// Package kv is a thin Redis client that degrades to a no-op when Redis is unreachable.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client is valid and behaves as an empty store.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client. No connection is made until first use.
func New(addr, password string, db int) *Client {
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// ErrNotConfigured is returned by a nil Client for operations that report errors.
var ErrNotConfigured = errors.New("redis not configured")

// Ping reports whether Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrNotConfigured
	}
	return c.client.Ping(ctx).Err()
}

// Exists reports whether key is present; unavailable Redis reads as absent.
func (c *Client) Exists(ctx context.Context, key string) bool {
	if c == nil || c.client == nil {
		return false
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Set stores value with TTL. A non-positive ttl stores nothing.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrNotConfigured
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
