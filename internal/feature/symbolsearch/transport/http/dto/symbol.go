// Package dto defines data transfer objects for the symbolsearch HTTP API.
package dto

import "watchlist_backend/internal/feature/symbolsearch/domain/entity"

// SymbolItem represents a symbol in the API response.
type SymbolItem struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// LogoMatchResponse はロゴ検索の1件です。
type LogoMatchResponse struct {
	Name       string       `json:"name"`
	Confidence float32      `json:"confidence"`
	Symbols    []SymbolItem `json:"symbols"`
}

// NewSymbolItems converts symbols for the wire.
func NewSymbolItems(symbols []entity.Symbol) []SymbolItem {
	out := make([]SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, SymbolItem{Code: s.Code, Name: s.Name, Market: s.Market})
	}
	return out
}

// NewLogoMatchResponses converts logo matches for the wire.
func NewLogoMatchResponses(matches []entity.LogoMatch) []LogoMatchResponse {
	out := make([]LogoMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, LogoMatchResponse{
			Name:       m.Logo.Name,
			Confidence: m.Logo.Confidence,
			Symbols:    NewSymbolItems(m.Symbols),
		})
	}
	return out
}
