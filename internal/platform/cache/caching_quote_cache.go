// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/usecase"
)

// CachingQuoteCache decorates a QuoteCache with Redis caching.
// Only the latest quote per symbol is kept in Redis, expiring when the quote goes stale.
// The underlying store stays the source of truth for history and purging.
type CachingQuoteCache struct {
	inner     usecase.QuoteCache
	rdb       *redis.Client
	namespace string
	now       func() time.Time
}

var _ usecase.QuoteCache = (*CachingQuoteCache)(nil)

// NewCachingQuoteCache decorates a QuoteCache with Redis caching.
// If namespace is empty, it uses "quotes".
func NewCachingQuoteCache(rdb *redis.Client, inner usecase.QuoteCache, namespace string) *CachingQuoteCache {
	if namespace == "" {
		namespace = "quotes"
	}
	return &CachingQuoteCache{
		inner:     inner,
		rdb:       rdb,
		namespace: namespace,
		now:       time.Now,
	}
}

// Get returns the cached quote from Redis, falling back to the underlying store.
func (c *CachingQuoteCache) Get(ctx context.Context, symbol string) (*entity.CachedQuote, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Get(ctx, symbol)
	}

	key := c.cacheKey(symbol)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.CachedQuote
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the underlying store
	out, err := c.inner.Get(ctx, symbol)
	if err != nil || out == nil {
		return out, err
	}

	// 3) Backfill while the quote is still fresh (best effort)
	c.store(ctx, key, out)
	return out, nil
}

// Put writes to the underlying store first and then refreshes Redis.
func (c *CachingQuoteCache) Put(ctx context.Context, q entity.Quote) (*entity.CachedQuote, error) {
	out, err := c.inner.Put(ctx, q)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		c.store(ctx, c.cacheKey(q.Symbol), out)
	}
	return out, nil
}

// PurgeExpired delegates to the underlying store. Redis entries expire on their own.
func (c *CachingQuoteCache) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	return c.inner.PurgeExpired(ctx, retention)
}

func (c *CachingQuoteCache) store(ctx context.Context, key string, cq *entity.CachedQuote) {
	remaining := cq.TTL - c.now().Sub(cq.CachedAt)
	if remaining <= 0 {
		return
	}
	if b, err := json.Marshal(cq); err == nil {
		_ = c.rdb.Set(ctx, key, b, remaining).Err()
	}
}

// cacheKey generates the cache key for a symbol.
func (c *CachingQuoteCache) cacheKey(symbol string) string {
	return fmt.Sprintf("%s:%s", c.namespace, safe(entity.NormalizeSymbol(symbol)))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
