package dto

import "github.com/shopspring/decimal"

// ChartResponse は /v8/finance/chart/{symbol} のレスポンスのうち使用する部分です。
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartResult holds one symbol's chart payload.
type ChartResult struct {
	Meta ChartMeta `json:"meta"`
}

// ChartMeta carries the summary price fields.
type ChartMeta struct {
	Symbol             string              `json:"symbol"`
	ShortName          string              `json:"shortName"`
	LongName           string              `json:"longName"`
	RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
	RegularMarketTime  int64               `json:"regularMarketTime"`
	ChartPreviousClose decimal.NullDecimal `json:"chartPreviousClose"`
	PreviousClose      decimal.NullDecimal `json:"previousClose"`
}

// ChartError is set instead of Result when the request failed.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
