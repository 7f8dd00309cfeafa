package dto

import (
	"time"

	"github.com/shopspring/decimal"

	quotedto "watchlist_backend/internal/feature/quotes/transport/http/dto"
	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	recdto "watchlist_backend/internal/feature/recommendation/transport/http/dto"
	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// EntryResponse はウォッチリストの1エントリーです。
type EntryResponse struct {
	ID            uint    `json:"id"`
	Symbol        string  `json:"symbol"`
	Alias         string  `json:"alias,omitempty"`
	TargetPrice   *string `json:"target_price"`
	StopLossPrice *string `json:"stop_loss_price"`
	AlertEnabled  bool    `json:"alert_enabled"`
	SortOrder     int     `json:"sort_order"`
	AddedAt       string  `json:"added_at"`
}

// ItemResponse はエントリーと解決済みの株価の組です。株価を取得できなかった場合は error を返します。
type ItemResponse struct {
	EntryResponse
	Quote *quotedto.QuoteResponse `json:"quote"`
	Error string                  `json:"error,omitempty"`
}

// SummaryResponse はポートフォリオ集計です。
type SummaryResponse struct {
	TotalValue         string `json:"total_value"`
	TotalChange        string `json:"total_change"`
	TotalChangePercent string `json:"total_change_percent"`
	Count              int    `json:"count"`
	LastUpdated        string `json:"last_updated,omitempty"`
}

// AlertResponse は価格アラート1件です。
type AlertResponse struct {
	ID              uint    `json:"id"`
	Symbol          string  `json:"symbol"`
	Type            string  `json:"type"`
	Target          string  `json:"target"`
	Active          bool    `json:"active"`
	Message         string  `json:"message,omitempty"`
	CreatedAt       string  `json:"created_at"`
	LastTriggeredAt *string `json:"last_triggered_at"`
}

// WatchlistResponse は GET /watchlist のレスポンスです。
type WatchlistResponse struct {
	Items           []ItemResponse                  `json:"items"`
	Errors          []string                        `json:"errors"`
	Summary         SummaryResponse                 `json:"summary"`
	TriggeredAlerts []AlertResponse                 `json:"triggered_alerts"`
	Recommendations []recdto.RecommendationResponse `json:"recommendations"`
	Capacity        int                             `json:"capacity"`
}

// ReorderResponse は並べ替え後のエントリー一覧です。
type ReorderResponse struct {
	Items []EntryResponse `json:"items"`
}

// NewEntryResponse converts an Entry for the wire.
func NewEntryResponse(e entity.Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Symbol:        e.Symbol,
		Alias:         e.Alias,
		TargetPrice:   priceString(e.TargetPrice),
		StopLossPrice: priceString(e.StopLossPrice),
		AlertEnabled:  e.AlertEnabled,
		SortOrder:     e.SortOrder,
		AddedAt:       e.AddedAt.UTC().Format(time.RFC3339),
	}
}

// NewEntryResponses converts a list of entries.
func NewEntryResponses(es []entity.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, NewEntryResponse(e))
	}
	return out
}

// NewAlertResponse converts a PriceAlert for the wire.
func NewAlertResponse(a entity.PriceAlert) AlertResponse {
	r := AlertResponse{
		ID:        a.ID,
		Symbol:    a.Symbol,
		Type:      string(a.Type),
		Target:    a.Target.String(),
		Active:    a.Active,
		Message:   a.Message,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.LastTriggeredAt != nil {
		s := a.LastTriggeredAt.UTC().Format(time.RFC3339)
		r.LastTriggeredAt = &s
	}
	return r
}

// NewAlertResponses converts a list of alerts.
func NewAlertResponses(as []entity.PriceAlert) []AlertResponse {
	out := make([]AlertResponse, 0, len(as))
	for _, a := range as {
		out = append(out, NewAlertResponse(a))
	}
	return out
}

// NewSummaryResponse converts a PortfolioSummary for the wire.
func NewSummaryResponse(s entity.PortfolioSummary) SummaryResponse {
	r := SummaryResponse{
		TotalValue:         s.TotalValue.StringFixed(2),
		TotalChange:        s.TotalChange.StringFixed(2),
		TotalChangePercent: quoteentity.FormatChangePercent(s.TotalChangePercent),
		Count:              s.Count,
	}
	if !s.LastUpdated.IsZero() {
		r.LastUpdated = s.LastUpdated.UTC().Format(time.RFC3339)
	}
	return r
}

// NewItemResponses converts the resolved items.
func NewItemResponses(items []entity.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		r := ItemResponse{EntryResponse: NewEntryResponse(it.Entry), Error: it.Error}
		if it.Quote != nil {
			q := quotedto.NewQuoteResponse(*it.Quote)
			r.Quote = &q
		}
		out = append(out, r)
	}
	return out
}

func priceString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
