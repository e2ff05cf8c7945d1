// Package redis wraps go-redis/v9 for the query-result cache: byte payloads
// with TTLs, a miss sentinel, and glob-pattern invalidation.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetBytes when the key does not exist.
var ErrMiss = errors.New("redis: cache miss")

const dialTimeout = 5 * time.Second

// Client wraps a pooled go-redis client.
type Client struct {
	rdb *redis.Client
}

// Dial connects and verifies the server responds to PING before returning.
func Dial(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis dial %s: %w", cfg.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// GetBytes fetches a raw value, translating key-not-found into ErrMiss.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// SetBytes stores a raw value under key for the given TTL.
func (c *Client) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// DeleteMatching removes every key matching the glob pattern, deleting in
// batches as the SCAN cursor advances. It returns the number of keys removed.
func (c *Client) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	var removed int64
	batch := make([]string, 0, 128)
	iter := c.rdb.Scan(ctx, 0, pattern, 128).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int64(len(batch))
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan %q: %w", pattern, err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return removed, fmt.Errorf("redis del: %w", err)
		}
		removed += int64(len(batch))
	}
	return removed, nil
}

// Ping checks connectivity, for use by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
