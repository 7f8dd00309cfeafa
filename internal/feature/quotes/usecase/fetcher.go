// Package usecase は株価の取得・キャッシュ・一括解決のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/shared/ratelimiter"
)

// QuoteProvider は外部の株価プロバイダー1つを抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteProvider interface {
	// Name returns a stable identifier used in logs, metrics and Quote.Provider.
	Name() string
	// FetchQuote returns the latest quote or a *domain.ProviderError.
	FetchQuote(ctx context.Context, symbol string) (entity.Quote, error)
}

// Metrics は株価取得まわりの計測値を記録します。
type Metrics interface {
	ObserveProviderAttempt(provider, outcome string, elapsed time.Duration)
	ObserveCacheLookup(result string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveProviderAttempt(string, string, time.Duration) {}
func (NopMetrics) ObserveCacheLookup(string)                            {}

// Fetcher は設定された順序でプロバイダーを試し、最初に成功した株価を返します。
type Fetcher struct {
	providers []QuoteProvider
	limiter   ratelimiter.Limiter
	metrics   Metrics
}

// NewFetcher は新しいFetcherを生成します。metrics が nil の場合は記録しません。
func NewFetcher(providers []QuoteProvider, limiter ratelimiter.Limiter, metrics Metrics) *Fetcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Fetcher{providers: providers, limiter: limiter, metrics: metrics}
}

// ProviderNames returns the configured chain in order.
func (f *Fetcher) ProviderNames() []string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name())
	}
	return names
}

// Fetch walks the provider chain for symbol.
// Every provider failure is logged and the next provider is tried. When the chain is exhausted
// a *domain.AggregateFetchError holding one failure per attempted provider is returned.
// If ctx ends the chain stops and the context error is returned.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if !entity.ValidSymbol(symbol) {
		return entity.Quote{}, fmt.Errorf("%w: %q", domain.ErrInvalidSymbol, symbol)
	}

	failures := make([]*domain.ProviderError, 0, len(f.providers))
	for _, p := range f.providers {
		// レートリミットはプロバイダーへの試行ごとに適用します
		if err := f.limiter.Wait(ctx); err != nil {
			return entity.Quote{}, fmt.Errorf("fetch %s: %w", symbol, err)
		}

		start := time.Now()
		q, err := p.FetchQuote(ctx, symbol)
		elapsed := time.Since(start)
		if err == nil {
			f.metrics.ObserveProviderAttempt(p.Name(), "success", elapsed)
			return q, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			f.metrics.ObserveProviderAttempt(p.Name(), "canceled", elapsed)
			return entity.Quote{}, fmt.Errorf("fetch %s: %w", symbol, ctxErr)
		}

		pe := asProviderError(p.Name(), err)
		f.metrics.ObserveProviderAttempt(p.Name(), pe.Kind.String(), elapsed)
		slog.Warn("quote provider failed, trying next",
			"provider", pe.Provider, "symbol", symbol, "kind", pe.Kind.String(), "error", pe.Err)
		failures = append(failures, pe)
	}

	return entity.Quote{}, &domain.AggregateFetchError{Symbol: symbol, Failures: failures}
}

// asProviderError classifies err. Untyped errors are treated as unavailable.
func asProviderError(provider string, err error) *domain.ProviderError {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			pe = domain.NewProviderError(provider, pe.Kind, pe.Err)
		}
		return pe
	}
	return domain.NewProviderError(provider, domain.KindUnavailable, err)
}
