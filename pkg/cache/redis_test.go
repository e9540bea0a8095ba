package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusd/professor-trust/pkg/cache"
	"github.com/campusd/professor-trust/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisTestCache(t *testing.T) cache.Cache {
	t.Helper()
	srv := miniredis.RunT(t)

	c, err := cache.NewRedisCache(srv.Addr(), "", 0)
	require.NoError(t, err)
	return c
}

func TestRedisCacheSetGet(t *testing.T) {
	c := redisTestCache(t)

	c.Set("issuer", testJWKS("kid-redis"), time.Minute)

	got, found := c.Get("issuer")
	require.True(t, found)
	assert.Equal(t, "kid-redis", got.Keys[0].KeyID)
}

func TestRedisCacheMiss(t *testing.T) {
	c := redisTestCache(t)

	_, found := c.Get("absent")
	assert.False(t, found)
}

func TestRedisCacheRoundTripsFullDocument(t *testing.T) {
	c := redisTestCache(t)

	doc := testJWKS("kid-1")
	c.Set("issuer", doc, time.Minute)

	got, found := c.Get("issuer")
	require.True(t, found)
	assert.Equal(t, doc, got)
}

func TestNewRedisCacheConnectFailure(t *testing.T) {
	_, err := cache.NewRedisCache("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestNewCacheBuildsRedis(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := &config.Config{Cache: &config.Cache{
		Type:      "redis",
		RedisAddr: srv.Addr(),
		TTL:       time.Minute,
	}}

	c, err := cache.NewCache(cfg)
	require.NoError(t, err)

	c.Set("issuer", testJWKS("kid-1"), 0) // Zero TTL falls back to the default.
	_, found := c.Get("issuer")
	assert.True(t, found)
}
