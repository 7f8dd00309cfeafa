package entity

import (
	"time"

	"github.com/shopspring/decimal"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
)

// Item pairs a watchlist entry with its resolved quote.
// Quote is nil and Error is set when the symbol could not be resolved.
type Item struct {
	Entry Entry
	Quote *quoteentity.Quote
	Error string
}

// AggregationResult is a resolved watchlist.
// Items has the same length and order as the input entries.
// Errors holds one "<SYMBOL>: <reason>" string per failing symbol, in first-appearance order.
type AggregationResult struct {
	Items  []Item
	Errors []string
}

// PortfolioSummary totals the resolved items of an AggregationResult.
type PortfolioSummary struct {
	TotalValue         decimal.Decimal
	TotalChange        decimal.Decimal
	TotalChangePercent decimal.Decimal
	Count              int
	LastUpdated        time.Time
}
