package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// mockProvider はQuoteProviderインターフェースのモック実装です。
type mockProvider struct {
	name    string
	fetchFn func(ctx context.Context, symbol string) (entity.Quote, error)
	calls   atomic.Int32
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	m.calls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, symbol)
	}
	return entity.Quote{}, errors.New("fetchFn is not implemented")
}

// noWaitLimiter は常に即座に許可するリミッターです。
type noWaitLimiter struct {
	calls atomic.Int32
	err   error
}

func (l *noWaitLimiter) Wait(ctx context.Context) error {
	l.calls.Add(1)
	if l.err != nil {
		return l.err
	}
	return ctx.Err()
}

// mockCache はQuoteCacheインターフェースのモック実装です。
type mockCache struct {
	mu      sync.Mutex
	getFn   func(ctx context.Context, symbol string) (*entity.CachedQuote, error)
	putFn   func(ctx context.Context, q entity.Quote) (*entity.CachedQuote, error)
	purgeFn func(ctx context.Context, retention time.Duration) (int64, error)
	puts    []entity.Quote
}

func (m *mockCache) Get(ctx context.Context, symbol string) (*entity.CachedQuote, error) {
	if m.getFn != nil {
		return m.getFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockCache) Put(ctx context.Context, q entity.Quote) (*entity.CachedQuote, error) {
	m.mu.Lock()
	m.puts = append(m.puts, q)
	m.mu.Unlock()
	if m.putFn != nil {
		return m.putFn(ctx, q)
	}
	return &entity.CachedQuote{Quote: q, CachedAt: time.Now(), TTL: entity.DefaultTTL}, nil
}

func (m *mockCache) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	if m.purgeFn != nil {
		return m.purgeFn(ctx, retention)
	}
	return 0, nil
}

func (m *mockCache) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.puts)
}

// mockFetcher はQuoteFetcherインターフェースのモック実装です。
type mockFetcher struct {
	fetchFn func(ctx context.Context, symbol string) (entity.Quote, error)
	calls   atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, symbol string) (entity.Quote, error) {
	m.calls.Add(1)
	return m.fetchFn(ctx, symbol)
}

func quote(symbol, price, change, provider string) entity.Quote {
	p := decimal.RequireFromString(price)
	c := decimal.RequireFromString(change)
	return entity.NewQuote(symbol, p, c, entity.PercentFromChange(p, c), "", time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC), provider)
}
