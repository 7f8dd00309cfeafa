package dto

import (
	"time"

	"watchlist_backend/internal/feature/quotes/domain/entity"
)

// QuoteResponse は株価のレスポンスDTOです。金額は小数点以下2桁の文字列で返します。
type QuoteResponse struct {
	Symbol        string `json:"symbol"`         // 銘柄コード
	CompanyName   string `json:"company_name"`   // 会社名
	Price         string `json:"price"`          // 現在値
	Change        string `json:"change"`         // 前日比
	ChangePercent string `json:"change_percent"` // 前日比（%）例: "+1.23%"
	CapturedAt    string `json:"captured_at"`    // 取得時刻（RFC3339, UTC）
	Provider      string `json:"provider"`       // 取得元
}

// NewQuoteResponse converts a Quote for the wire.
func NewQuoteResponse(q entity.Quote) QuoteResponse {
	return QuoteResponse{
		Symbol:        q.Symbol,
		CompanyName:   q.CompanyName,
		Price:         q.Price.StringFixed(2),
		Change:        q.Change.StringFixed(2),
		ChangePercent: entity.FormatChangePercent(q.ChangePercent),
		CapturedAt:    q.CapturedAt.UTC().Format(time.RFC3339),
		Provider:      q.Provider,
	}
}
