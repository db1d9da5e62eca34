// Package cache is the Redis-backed result cache. Identical requests
// (same input, mode, and provider preference) are served from cache within
// the configured TTL instead of re-dispatching to a model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports an absent or expired entry.
var ErrMiss = errors.New("cache: miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: redis.NewClient(opt), ttl: ttl}, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Key derives the cache key for one analysis request. The raw input never
// reaches Redis key space; only its digest does.
func Key(input, mode, provider string) string {
	sum := sha256.Sum256([]byte(input + "|" + mode + "|" + provider))
	return "analysis:" + hex.EncodeToString(sum[:])
}

func (c *Cache) GetAnalysis(ctx context.Context, key string, v any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c *Cache) PutAnalysis(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// IncrUsage bumps a named usage counter (requests_total, requests_failed).
// Counters live in Redis so multiple instances share one view.
func (c *Cache) IncrUsage(ctx context.Context, name string) error {
	return c.client.Incr(ctx, "usage:"+name).Err()
}

func (c *Cache) Usage(ctx context.Context, name string) (int64, error) {
	n, err := c.client.Get(ctx, "usage:"+name).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
