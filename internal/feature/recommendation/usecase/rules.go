// Package usecase はrecommendationフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/recommendation/domain/entity"
	watchlistentity "watchlist_backend/internal/feature/watchlist/domain/entity"
)

var (
	// BuyBelowPercent は買いを提案する日次騰落率の上限です。
	BuyBelowPercent = decimal.NewFromInt(-5)
	// SellAbovePercent は売りを提案する日次騰落率の下限です。
	SellAbovePercent = decimal.NewFromInt(5)
)

// Recommend はエントリーの価格設定と日次騰落率から提案を決めます。
// 利確・損切りの価格設定は騰落率より優先します。株価が無い項目は ok=false です。
func Recommend(item watchlistentity.Item) (rec entity.Recommendation, ok bool) {
	if item.Quote == nil {
		return entity.Recommendation{}, false
	}
	q := item.Quote
	rec.Symbol = q.Symbol

	switch {
	case item.Entry.TargetPrice != nil && q.Price.GreaterThanOrEqual(*item.Entry.TargetPrice):
		rec.Action = entity.ActionTakeProfit
		rec.Reason = fmt.Sprintf("price %s reached target %s", q.Price.StringFixed(2), item.Entry.TargetPrice.StringFixed(2))
	case item.Entry.StopLossPrice != nil && q.Price.LessThanOrEqual(*item.Entry.StopLossPrice):
		rec.Action = entity.ActionStopLoss
		rec.Reason = fmt.Sprintf("price %s fell to stop loss %s", q.Price.StringFixed(2), item.Entry.StopLossPrice.StringFixed(2))
	case q.ChangePercent.LessThanOrEqual(BuyBelowPercent):
		rec.Action = entity.ActionBuy
		rec.Reason = fmt.Sprintf("down %s%% today", q.ChangePercent.Abs().StringFixed(2))
	case q.ChangePercent.GreaterThanOrEqual(SellAbovePercent):
		rec.Action = entity.ActionSell
		rec.Reason = fmt.Sprintf("up %s%% today", q.ChangePercent.StringFixed(2))
	default:
		rec.Action = entity.ActionHold
		rec.Reason = "no signal"
	}
	return rec, true
}

// RecommendAll returns one recommendation per resolved item, in item order.
func RecommendAll(result watchlistentity.AggregationResult) []entity.Recommendation {
	out := make([]entity.Recommendation, 0, len(result.Items))
	for _, it := range result.Items {
		if rec, ok := Recommend(it); ok {
			out = append(out, rec)
		}
	}
	return out
}
