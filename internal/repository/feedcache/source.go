package feedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/db"
	"github.com/kailas-cloud/foodmap/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "dataset:"

// source is the upstream dataset location being cached.
type source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// store is the consumer interface for the dataset cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// CachedSource keeps a copy of the raw dataset bytes in a key-value store.
type CachedSource struct {
	inner      source
	store      store
	ttl        time.Duration
	validate   func([]byte) error
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. ttl <= 0 stores without expiry.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner source,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	return &CachedSource{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithValidator sets a check run on cached and fetched bytes. Bytes that fail
// it are never stored, and a cached copy that fails it counts as a miss.
func (c *CachedSource) WithValidator(validate func([]byte) error) *CachedSource {
	c.validate = validate
	return c
}

// Name returns the upstream name; cached and uncached reads share one identity.
func (c *CachedSource) Name() string { return c.inner.Name() }

// Fetch returns cached bytes or reads the upstream and stores the result.
// Cache errors only degrade to an upstream read.
func (c *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	key := CacheKey(c.inner.Name())

	if data, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		c.logHit(ctx, key, len(data))
		return data, nil
	}

	c.incCache("miss")

	data, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}

	if err := c.check(data); err != nil {
		c.logger.Warn("Fetched dataset rejected, not caching",
			zap.String("source", c.inner.Name()), zap.Error(err))
		return data, nil
	}

	c.putToCache(ctx, key, data)
	return data, nil
}

func (c *CachedSource) check(data []byte) error {
	if c.validate == nil {
		return nil
	}
	return c.validate(data)
}

// CacheKey is the store key for a source name.
func CacheKey(name string) string {
	h := sha256.Sum256([]byte(name))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSource) getFromCache(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached dataset", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	if err := c.check(data); err != nil {
		c.logger.Warn("Cached dataset rejected, refetching", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

func (c *CachedSource) logHit(ctx context.Context, key string, size int) {
	fields := []zap.Field{
		zap.String("source", c.inner.Name()),
		zap.Int("bytes", size),
	}
	if ttl, err := c.store.TTL(ctx, key); err == nil && ttl > 0 {
		fields = append(fields, zap.Duration("expires_in", ttl))
	}
	c.logger.Info("Dataset served from cache", fields...)
}

func (c *CachedSource) putToCache(ctx context.Context, key string, data []byte) {
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache dataset", zap.String("key", key), zap.Error(err))
	}
}
