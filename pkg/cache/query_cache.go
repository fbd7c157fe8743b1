// Package cache provides the query-embedding cache used by the search
// coordinator. Re-running a search re-embeds the same query text; caching the
// vector saves a provider round trip.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryEmbeddingCache stores query vectors keyed by query text.
type QueryEmbeddingCache interface {
	Get(ctx context.Context, model, query string) ([]float32, bool)
	Set(ctx context.Context, model, query string, vector []float32)
}

// RedisQueryCache is the production implementation.
type RedisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisQueryCache(client *redis.Client, ttl time.Duration) *RedisQueryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisQueryCache{client: client, ttl: ttl}
}

func cacheKey(model, query string) string {
	sum := sha256.Sum256([]byte(query))
	return "queryemb:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *RedisQueryCache) Get(ctx context.Context, model, query string) ([]float32, bool) {
	raw, err := c.client.Get(ctx, cacheKey(model, query)).Bytes()
	if err != nil {
		// Cache misses and redis outages look the same to the caller.
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false
	}
	return vector, true
}

func (c *RedisQueryCache) Set(ctx context.Context, model, query string, vector []float32) {
	raw, err := json.Marshal(vector)
	if err != nil {
		return
	}
	// Best effort; search works without the cache.
	c.client.Set(ctx, cacheKey(model, query), raw, c.ttl)
}

// NoopQueryCache disables caching; used in tests and when redis is absent.
type NoopQueryCache struct{}

func (NoopQueryCache) Get(ctx context.Context, model, query string) ([]float32, bool) {
	return nil, false
}

func (NoopQueryCache) Set(ctx context.Context, model, query string, vector []float32) {}
