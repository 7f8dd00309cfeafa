package dto

import "github.com/shopspring/decimal"

// QuoteResponse は Finnhub /quote エンドポイントのレスポンスです。
// 未知のシンボルでは c と t が 0、d と dp が null になります。
type QuoteResponse struct {
	Current       decimal.Decimal     `json:"c"`
	Change        decimal.NullDecimal `json:"d"`
	PercentChange decimal.NullDecimal `json:"dp"`
	PreviousClose decimal.Decimal     `json:"pc"`
	Timestamp     int64               `json:"t"`
}
