package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qapish/qapish/internal/common"
	"github.com/qapish/qapish/internal/model"
	"github.com/qapish/qapish/internal/service"
	"github.com/redis/go-redis/v9"
)

// PackagesKey is the cache key of the package listing.
const PackagesKey = "qapish:catalog:packages"

// ErrCacheMiss is returned by a Cache that holds no value for a key.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque values with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisConfig holds the client settings for RedisCache.
type RedisConfig struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// RedisCache is a Cache backed by a Redis server.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to cfg.URL and pings the server, retrying transient
// failures.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.ReadTimeout = durationOr(cfg.ReadTimeout, 3*time.Second)
	opts.WriteTimeout = durationOr(cfg.WriteTimeout, 3*time.Second)
	opts.DialTimeout = durationOr(cfg.DialTimeout, 5*time.Second)

	client := redis.NewClient(opts)

	err = common.WithRetry(ctx, func() error {
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return fmt.Errorf("%w: %v", common.ErrCacheUnavailable, pingErr)
		}
		return nil
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second})
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// Get returns the value stored under key or ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

// Set stores value under key for ttl.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Close releases the client's connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Cached serves the package listing from a Cache in front of another Source.
// Cache failures are logged and the wrapped Source answers instead.
type Cached struct {
	next  Source
	cache Cache
	ttl   time.Duration
}

// NewCached wraps next with a listing cache.
func NewCached(next Source, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl}
}

// Packages returns the cached listing, filling it from the wrapped Source on a miss.
func (c *Cached) Packages(ctx context.Context) ([]model.Package, error) {
	data, err := c.cache.Get(ctx, PackagesKey)
	switch {
	case err == nil:
		var packages []model.Package
		jsonErr := json.Unmarshal(data, &packages)
		if jsonErr == nil {
			slog.Debug("Catalog cache hit", "packages", len(packages))
			return packages, nil
		}
		slog.Warn("Discarding unreadable catalog cache entry", "error", jsonErr)
	case !errors.Is(err, ErrCacheMiss):
		slog.Warn("Catalog cache read failed", "error", err)
	}

	packages, err := c.next.Packages(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(packages); err == nil {
		if err := c.cache.Set(ctx, PackagesKey, data, c.ttl); err != nil {
			slog.Warn("Catalog cache write failed", "error", err)
		}
	}
	return packages, nil
}

// PackageBySKU is not cached.
func (c *Cached) PackageBySKU(ctx context.Context, sku string) (*model.Package, error) {
	return c.next.PackageBySKU(ctx, sku)
}

// CreateOrder is not cached.
func (c *Cached) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (model.CreateOrderResponse, error) {
	return c.next.CreateOrder(ctx, req)
}

// Orders is not cached.
func (c *Cached) Orders(ctx context.Context) ([]model.OrderSummary, error) {
	return c.next.Orders(ctx)
}

// Invalidate drops the cached listing, e.g. after the catalog is reseeded.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, PackagesKey)
}
