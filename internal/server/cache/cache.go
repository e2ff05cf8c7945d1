// Package cache provides a Redis-backed query-result cache with
// singleflight deduplication of concurrent identical queries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/AustinPardosi/IR-System-BE/internal/engine"
	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	pkgredis "github.com/AustinPardosi/IR-System-BE/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "query:"

// QueryCache caches ranked query results. Any index mutation or retraining
// must call Invalidate, since weights and rankings depend on the whole
// corpus.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, query string, opt engine.QueryOptions) (*engine.QueryResult, bool) {
	key := c.buildKey(query, opt)
	data, err := c.client.GetBytes(ctx, key)
	if err != nil {
		if !errors.Is(err, pkgredis.ErrMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result engine.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, query string, opt engine.QueryOptions, result *engine.QueryResult) {
	key := c.buildKey(query, opt)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.SetBytes(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for (query, opt) or computes it
// once even under concurrent identical requests. The bool reports a cache
// hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	opt engine.QueryOptions,
	computeFn func() (*engine.QueryResult, error),
) (*engine.QueryResult, bool, error) {
	if result, ok := c.Get(ctx, query, opt); ok {
		return result, true, nil
	}
	key := c.buildKey(query, opt)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, query, opt); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, opt, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*engine.QueryResult), false, nil
}

// Invalidate drops every cached query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.DeleteMatching(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query string, opt engine.QueryOptions) string {
	terms := strings.Fields(strings.ToLower(query))
	sort.Strings(terms)
	raw := fmt.Sprintf("%s|scheme=%s|expand=%t|topk=%d|idf=%t|norm=%t",
		strings.Join(terms, ","), opt.Scheme, opt.Expand, opt.TopK, opt.UseIDF, opt.Normalize)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
