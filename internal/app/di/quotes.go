// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/redis/go-redis/v9"

	quoteadapters "watchlist_backend/internal/feature/quotes/adapters"
	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/platform/cache"
	"watchlist_backend/internal/platform/externalapi/finnhub"
	"watchlist_backend/internal/platform/externalapi/twelvedata"
	"watchlist_backend/internal/platform/externalapi/yahoo"
	infrahttp "watchlist_backend/internal/platform/http"
)

// NewQuoteProviders creates the provider clients in the given fallback order.
// Keyed providers without an API key are skipped.
func NewQuoteProviders(names []string) []quoteusecase.QuoteProvider {
	providers := make([]quoteusecase.QuoteProvider, 0, len(names))
	for _, name := range names {
		switch name {
		case twelvedata.ProviderName:
			cfg := twelvedata.LoadConfig()
			if cfg.APIKey == "" {
				slog.Warn("quote provider skipped: api key not set", "provider", name)
				continue
			}
			providers = append(providers, twelvedata.NewQuoteClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout)))
		case finnhub.ProviderName:
			cfg := finnhub.LoadConfig()
			if cfg.APIKey == "" {
				slog.Warn("quote provider skipped: api key not set", "provider", name)
				continue
			}
			providers = append(providers, finnhub.NewQuoteClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout)))
		case yahoo.ProviderName:
			cfg := yahoo.LoadConfig()
			providers = append(providers, yahoo.NewQuoteClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout)))
		default:
			slog.Warn("unknown quote provider ignored", "provider", name)
		}
	}
	return providers
}

// NewQuoteCache creates the gorm quote cache, wrapped with Redis when rdb is not nil.
func NewQuoteCache(db *gorm.DB, rdb *redis.Client, ttl time.Duration) quoteusecase.QuoteCache {
	store := quoteadapters.NewQuoteCache(db, ttl)
	if rdb == nil {
		return store
	}
	return cache.NewCachingQuoteCache(rdb, store, "quotes")
}
