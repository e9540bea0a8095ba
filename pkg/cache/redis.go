package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusd/professor-trust/pkg/types"
	"github.com/go-redis/redis/v8"
)

// redisCache stores JWKS documents in redis so multiple professor service
// replicas share one key cache.
type redisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	keyPrefix  string
	timeout    time.Duration
}

// RedisOption configures the redis cache
type RedisOption func(*redisCache)

// WithRedisDefaultTTL sets the default TTL for cache entries
func WithRedisDefaultTTL(ttl time.Duration) RedisOption {
	return func(c *redisCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithRedisKeyPrefix sets the prefix prepended to every cache key
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(c *redisCache) {
		c.keyPrefix = prefix
	}
}

// NewRedisCache creates a redis backed JWKS cache and verifies connectivity.
func NewRedisCache(addr, password string, db int, opts ...RedisOption) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	c := &redisCache{
		client:     client,
		defaultTTL: Defaults.TTL,
		keyPrefix:  "jwks:",
		timeout:    Defaults.Timeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return c, nil
}

func (c *redisCache) Get(key string) (*types.JWKS, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err == redis.Nil {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}
	if err != nil {
		slog.Error("Redis get failed", "key", key, "error", err)
		return nil, false
	}

	var jwks types.JWKS
	if err := json.Unmarshal(raw, &jwks); err != nil {
		slog.Error("Failed to unmarshal cached JWKS", "key", key, "error", err)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return &jwks, true
}

func (c *redisCache) Set(key string, value *types.JWKS, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to marshal JWKS for cache", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		slog.Error("Redis set failed", "key", key, "error", err)
		return
	}

	slog.Debug("Cached value", "key", key, "ttl", ttl)
}
