package dto

// QuoteResponse は Twelve Data /quote エンドポイントのレスポンスです。
// 数値はすべて文字列で返されます。
type QuoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Datetime      string `json:"datetime"`
	Timestamp     int64  `json:"timestamp"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`

	// エラー時のみ設定されます
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
