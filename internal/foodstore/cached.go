// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// ErrCacheMiss reports a key absent from the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key-value contract CachedStore needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache adapts a redis client to Cache.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisCache{client: client}, client, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedStore serves repeated searches from a cache. Cache failures are
// logged and fall through to the wrapped store; they never fail a search.
type CachedStore struct {
	inner  Store
	cache  Cache
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewCachedStore wraps inner with cache. Keys are prefixed with prefix.
func NewCachedStore(inner Store, cache Cache, cfg types.CacheConfig, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "nutrition-align"
	}
	return &CachedStore{inner: inner, cache: cache, ttl: cfg.TTL, prefix: prefix, log: log}
}

// Search implements Store.
func (c *CachedStore) Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error) {
	key := c.key(query, limit)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var entries []types.CandidateEntry
		if jerr := json.Unmarshal(data, &entries); jerr == nil {
			return entries, nil
		}
		c.log.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	entries, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

func (c *CachedStore) key(query string, limit int) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%s:search:%d:%s", c.prefix, limit, hex.EncodeToString(sum[:]))
}
