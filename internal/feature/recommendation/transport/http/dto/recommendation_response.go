// Package dto はrecommendationフィーチャーのHTTPレスポンス型を定義します。
package dto

import "watchlist_backend/internal/feature/recommendation/domain/entity"

// RecommendationResponse is one suggestion in the watchlist response.
type RecommendationResponse struct {
	Symbol string `json:"symbol"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// AnalysisResponse はAI解説のレスポンスです。
type AnalysisResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Summary     string   `json:"summary"`
	Points      []string `json:"points"`
	Stance      string   `json:"stance"`
}

// NewAnalysisResponse converts an analysis for JSON output.
func NewAnalysisResponse(a *entity.Analysis) AnalysisResponse {
	points := a.Points
	if points == nil {
		points = []string{}
	}
	return AnalysisResponse{
		Symbol:      a.Symbol,
		CompanyName: a.CompanyName,
		Summary:     a.Summary,
		Points:      points,
		Stance:      string(a.Stance),
	}
}

// NewRecommendationResponses converts recommendations for JSON output.
func NewRecommendationResponses(recs []entity.Recommendation) []RecommendationResponse {
	out := make([]RecommendationResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, RecommendationResponse{Symbol: r.Symbol, Action: string(r.Action), Reason: r.Reason})
	}
	return out
}
