// Package cache stores fetched JWKS documents so verifiers that are remote
// from the issuer do not refetch keys per request. Entries are keyed by the
// JWKS URL; within a key's validity window the kid is stable, so entries
// never need explicit invalidation.
package cache

import (
	"fmt"
	"time"

	"github.com/campusd/professor-trust/pkg/config"
	"github.com/campusd/professor-trust/pkg/types"
)

// CacheDefaults holds all default configuration values for cache implementations
type CacheDefaults struct {
	Timeout      time.Duration // Default timeout for cache operations
	TTL          time.Duration // Default TTL for cache entries
	MaxLocalSize int           // Default max size for in-memory caches
}

// Defaults provides the default configuration values for all cache implementations
var Defaults = CacheDefaults{
	Timeout:      10 * time.Second,
	TTL:          1 * time.Hour,
	MaxLocalSize: 10,
}

// Cache interface defines the methods that all cache implementations must provide
type Cache interface {
	Get(key string) (*types.JWKS, bool)
	Set(key string, value *types.JWKS, ttl time.Duration)
}

// GetConfiguredTTL returns the TTL from config or the default if not specified
func GetConfiguredTTL(cfg *config.Config) time.Duration {
	if cfg != nil && cfg.Cache != nil && cfg.Cache.TTL > 0 {
		return cfg.Cache.TTL
	}
	return Defaults.TTL
}

// GetConfiguredMaxLocalSize returns the max local size from config or the default if not specified
func GetConfiguredMaxLocalSize(cfg *config.Config) int {
	if cfg != nil && cfg.Cache != nil && cfg.Cache.MaxLocalSize > 0 {
		return cfg.Cache.MaxLocalSize
	}
	return Defaults.MaxLocalSize
}

// NewCache creates a new cache implementation based on the configuration
func NewCache(cfg *config.Config) (Cache, error) {
	if cfg == nil || cfg.Cache == nil {
		return NewMemoryCache(), nil
	}

	cacheType := cfg.Cache.Type
	if cacheType == "" {
		cacheType = "memory"
	}

	switch cacheType {
	case "memory":
		return NewMemoryCache(), nil

	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required for redis cache")
		}
		return NewRedisCache(
			cfg.Cache.RedisAddr,
			cfg.Cache.RedisPassword,
			cfg.Cache.RedisDB,
			WithRedisDefaultTTL(GetConfiguredTTL(cfg)),
		)

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}
