package usecase

import (
	"github.com/shopspring/decimal"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// SummarizePortfolio totals the resolved items of result. Unresolved items are skipped.
// The percent is TotalChange relative to the previous total value and is zero when that is not positive.
func SummarizePortfolio(result entity.AggregationResult) entity.PortfolioSummary {
	s := entity.PortfolioSummary{
		TotalValue:  decimal.Zero,
		TotalChange: decimal.Zero,
	}
	for _, it := range result.Items {
		if it.Quote == nil {
			continue
		}
		s.TotalValue = s.TotalValue.Add(it.Quote.Price)
		s.TotalChange = s.TotalChange.Add(it.Quote.Change)
		s.Count++
		if it.Quote.CapturedAt.After(s.LastUpdated) {
			s.LastUpdated = it.Quote.CapturedAt
		}
	}
	s.TotalChangePercent = quoteentity.PercentFromChange(s.TotalValue, s.TotalChange)
	return s
}
