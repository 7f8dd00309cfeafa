// Package entity はrecommendationフィーチャーのドメインモデルを定義します。
package entity

// Action is the suggested move for one watchlist symbol.
type Action string

const (
	ActionBuy        Action = "buy"
	ActionSell       Action = "sell"
	ActionTakeProfit Action = "take_profit"
	ActionStopLoss   Action = "stop_loss"
	ActionHold       Action = "hold"
)

// Recommendation は1銘柄に対する売買の目安です。
type Recommendation struct {
	Symbol string
	Action Action
	Reason string
}

// Analysis はAIが生成した銘柄の解説です。
type Analysis struct {
	Symbol      string
	CompanyName string
	Summary     string
	Points      []string // 投資家向けの要点
	Stance      Action   // buy, sell または hold
}
