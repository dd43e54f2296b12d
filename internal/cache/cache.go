// Package cache wraps Redis behind a client that degrades to a no-op when
// the server is unreachable. Callers treat every miss and every transport
// failure identically, so Redis going down slows the service but never
// breaks it.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the fail-safe Redis handle. A nil *Client is valid and behaves
// like an always-empty cache, which keeps tests free of Redis.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis at addr. The connection is lazy; errors surface on
// first use and are then swallowed by the fail-safe methods.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Get returns the cached bytes, or nil on a miss or any Redis failure.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors both read as a miss
		return nil, nil
	}
	return data, nil
}

// Set stores value under key with a TTL. Redis failures are dropped.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	c.rdb.Set(ctx, key, value, ttl)
	return nil
}

// Delete removes key. Redis failures are dropped; a stale entry expires via
// its TTL anyway.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	c.rdb.Del(ctx, key)
	return nil
}
