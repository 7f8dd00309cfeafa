package usecase

import (
	"context"
	"errors"
	"fmt"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteusecase "watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// QuoteResolver は複数銘柄の株価を一括で解決します。
type QuoteResolver interface {
	GetQuotes(ctx context.Context, symbols []string) []quoteusecase.Lookup
}

var _ QuoteResolver = (*quoteusecase.QuoteUsecase)(nil)

// Aggregator pairs watchlist entries with their quotes.
type Aggregator struct {
	quotes QuoteResolver
}

// NewAggregator は新しい Aggregator を作成します。
func NewAggregator(quotes QuoteResolver) *Aggregator {
	return &Aggregator{quotes: quotes}
}

// Resolve returns one Item per entry in input order. It never fails: symbols that could not be
// resolved carry an error reason and are listed once in Errors.
func (a *Aggregator) Resolve(ctx context.Context, entries []entity.Entry) entity.AggregationResult {
	result := entity.AggregationResult{Items: make([]entity.Item, len(entries))}
	if len(entries) == 0 {
		return result
	}

	symbols := make([]string, len(entries))
	for i, e := range entries {
		symbols[i] = e.Symbol
	}
	lookups := a.quotes.GetQuotes(ctx, symbols)

	reported := make(map[string]bool)
	for i, e := range entries {
		item := entity.Item{Entry: e}
		if i < len(lookups) {
			l := lookups[i]
			switch {
			case l.Err != nil:
				item.Error = failureReason(l.Err)
				if !reported[l.Symbol] {
					reported[l.Symbol] = true
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", l.Symbol, item.Error))
				}
			case l.Quote != nil:
				q := *l.Quote
				item.Quote = &q
			}
		}
		result.Items[i] = item
	}
	return result
}

const reasonUnavailable = "quote unavailable"

// failureReason renders the short reason used in AggregationResult errors.
func failureReason(err error) string {
	switch {
	case errors.Is(err, quotedomain.ErrTimedOut),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return quotedomain.ErrTimedOut.Error()
	case errors.Is(err, quotedomain.ErrAllProvidersFailed):
		return quotedomain.ErrAllProvidersFailed.Error()
	case errors.Is(err, quotedomain.ErrInvalidSymbol):
		return quotedomain.ErrInvalidSymbol.Error()
	default:
		// 想定外のエラー詳細はレスポンスに載せない
		return reasonUnavailable
	}
}
