package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotedomain "watchlist_backend/internal/feature/quotes/domain"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
	"watchlist_backend/internal/feature/watchlist/usecase"
)

func entries(symbols ...string) []entity.Entry {
	out := make([]entity.Entry, len(symbols))
	for i, s := range symbols {
		out[i] = entity.Entry{ID: uint(i + 1), Symbol: s, SortOrder: i}
	}
	return out
}

// TestAggregator_Resolve は入力順の保持と失敗理由の集約を検証します。
func TestAggregator_Resolve(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	resolver := &stubResolver{
		quotes: map[string]quoteentity.Quote{
			"AAPL": quote("AAPL", "150", "1.5", at),
			"GOOG": quote("GOOG", "100", "-2", at),
		},
		errs: map[string]error{
			"SLOW": fmt.Errorf("SLOW: %w", quotedomain.ErrTimedOut),
		},
	}
	agg := usecase.NewAggregator(resolver)

	res := agg.Resolve(context.Background(), entries("AAPL", "MSFT", "GOOG", "SLOW", "MSFT"))

	require.Len(t, res.Items, 5)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG", "SLOW", "MSFT"}, []string{
		res.Items[0].Entry.Symbol, res.Items[1].Entry.Symbol, res.Items[2].Entry.Symbol,
		res.Items[3].Entry.Symbol, res.Items[4].Entry.Symbol,
	})

	require.NotNil(t, res.Items[0].Quote)
	assert.Equal(t, "150", res.Items[0].Quote.Price.String())
	assert.Empty(t, res.Items[0].Error)

	assert.Nil(t, res.Items[1].Quote)
	assert.Equal(t, "all providers failed", res.Items[1].Error)
	assert.Equal(t, "timed out", res.Items[3].Error)

	// 同じ銘柄の失敗は1度だけ報告されます
	assert.Equal(t, []string{"MSFT: all providers failed", "SLOW: timed out"}, res.Errors)
}

func TestAggregator_Resolve_Empty(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{}
	res := usecase.NewAggregator(resolver).Resolve(context.Background(), nil)

	assert.Empty(t, res.Items)
	assert.Empty(t, res.Errors)
	assert.Empty(t, resolver.calls, "no lookup for an empty watchlist")
}

// TestAggregator_Resolve_ContextErrorIsTimedOut は ctx 由来のエラーが timed out と表示されることを検証します。
func TestAggregator_Resolve_ContextErrorIsTimedOut(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{errs: map[string]error{
		"AAPL": context.DeadlineExceeded,
		"BAD":  quotedomain.ErrInvalidSymbol,
	}}
	res := usecase.NewAggregator(resolver).Resolve(context.Background(), entries("AAPL", "BAD"))

	assert.Equal(t, []string{"AAPL: timed out", "BAD: invalid symbol"}, res.Errors)
}

// TestAggregator_Resolve_UnexpectedErrorIsGeneric は想定外のエラー詳細が理由に含まれないことを検証します。
func TestAggregator_Resolve_UnexpectedErrorIsGeneric(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{errs: map[string]error{
		"AAPL": fmt.Errorf("lookup: dial tcp 10.0.0.5:5432: connection refused"),
	}}
	res := usecase.NewAggregator(resolver).Resolve(context.Background(), entries("AAPL"))

	assert.Equal(t, "quote unavailable", res.Items[0].Error)
	assert.Equal(t, []string{"AAPL: quote unavailable"}, res.Errors)
}
