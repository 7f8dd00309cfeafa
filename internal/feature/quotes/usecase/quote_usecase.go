package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// DefaultMaxConcurrency is the fan-out cap used by GetQuotes when none is configured.
const DefaultMaxConcurrency = 8

// QuoteCache は株価キャッシュの永続化レイヤーを抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteCache interface {
	// Get returns the most recently cached quote for symbol, or nil, nil when none exists.
	// Validity is not checked here.
	Get(ctx context.Context, symbol string) (*entity.CachedQuote, error)
	// Put appends a new cache row stamped with the current time.
	Put(ctx context.Context, q entity.Quote) (*entity.CachedQuote, error)
	// PurgeExpired deletes rows cached more than retention ago and returns how many were removed.
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// QuoteFetcher は株価をプロバイダーチェーンから取得します。
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (entity.Quote, error)
}

var _ QuoteFetcher = (*Fetcher)(nil)

// QuoteUsecase はキャッシュ優先で株価を解決するユースケースです。
type QuoteUsecase struct {
	fetcher        QuoteFetcher
	cache          QuoteCache
	metrics        Metrics
	maxConcurrency int
	now            func() time.Time

	group singleflight.Group
}

// NewQuoteUsecase は新しい QuoteUsecase を作成します。
// maxConcurrency が0以下の場合は DefaultMaxConcurrency を使用します。
func NewQuoteUsecase(fetcher QuoteFetcher, cache QuoteCache, metrics Metrics, maxConcurrency int) *QuoteUsecase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &QuoteUsecase{
		fetcher:        fetcher,
		cache:          cache,
		metrics:        metrics,
		maxConcurrency: maxConcurrency,
		now:            time.Now,
	}
}

// GetQuote returns a fresh cached quote when one exists, otherwise fetches from the provider
// chain and writes the result through to the cache.
// Cache failures never fail the lookup.
func (u *QuoteUsecase) GetQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if !entity.ValidSymbol(symbol) {
		return entity.Quote{}, fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, symbol)
	}

	cached, err := u.cache.Get(ctx, symbol)
	switch {
	case err != nil:
		// キャッシュ障害はミスとして扱います
		u.metrics.ObserveCacheLookup("error")
		slog.Warn("quote cache read failed, treating as miss", "symbol", symbol, "error", err)
	case cached != nil && cached.IsValidAt(u.now()):
		u.metrics.ObserveCacheLookup("hit")
		return cached.Quote, nil
	case cached != nil:
		u.metrics.ObserveCacheLookup("stale")
	default:
		u.metrics.ObserveCacheLookup("miss")
	}

	return u.fetchShared(ctx, symbol)
}

// fetchShared collapses concurrent fetches of the same symbol into one provider walk.
func (u *QuoteUsecase) fetchShared(ctx context.Context, symbol string) (entity.Quote, error) {
	ch := u.group.DoChan(symbol, func() (any, error) {
		return u.fetchAndStore(ctx, symbol)
	})

	select {
	case <-ctx.Done():
		return entity.Quote{}, fmt.Errorf("fetch %s: %w", symbol, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			// 共有元の呼び出し側がキャンセルされた場合は自分の ctx で取り直します
			if res.Shared && isContextErr(res.Err) && ctx.Err() == nil {
				return u.fetchAndStore(ctx, symbol)
			}
			return entity.Quote{}, res.Err
		}
		return res.Val.(entity.Quote), nil
	}
}

func (u *QuoteUsecase) fetchAndStore(ctx context.Context, symbol string) (entity.Quote, error) {
	q, err := u.fetcher.Fetch(ctx, symbol)
	if err != nil {
		return entity.Quote{}, err
	}
	if _, err := u.cache.Put(ctx, q); err != nil {
		slog.Warn("quote cache write failed", "symbol", symbol, "provider", q.Provider, "error", err)
	}
	return q, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
