// Package gemini はGoogle Gemini APIを使用して株価から銘柄解説を生成するアダプターを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/recommendation/domain/entity"
	"watchlist_backend/internal/feature/recommendation/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// EnvKeyModel でモデル名を上書きできます。
	EnvKeyModel = "GEMINI_MODEL"

	// maxPoints はレスポンスから採用する要点の上限です。
	maxPoints = 3
)

const systemInstruction = "あなたは個人投資家向けの株式アナリストです。与えられた株価情報だけを根拠に、" +
	"断定を避けて日本語で簡潔に回答してください。"

const promptTemplate = "%s（ティッカー: %s）について、現在値%s・前日比%s（%s）を踏まえて、" +
	"投資家向けの要点を最大3つと、buy / hold / sell のいずれかの姿勢を返してください。"

var errEmptySummary = errors.New("gemini returned an empty summary")

// analysisResponse はモデルに要求するJSONレスポンスの形です。
type analysisResponse struct {
	Summary string   `json:"summary"`
	Points  []string `json:"points"`
	Stance  string   `json:"stance"`
}

// responseSchema は analysisResponse に対応するスキーマです。
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString, Description: "2文以内の概要"},
		"points":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"stance":  {Type: genai.TypeString, Enum: []string{"buy", "hold", "sell"}},
	},
	Required: []string{"summary", "points", "stance"},
}

type generateFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error)

// QuoteAnalyzer はGemini APIで株価スナップショットを解説します。
type QuoteAnalyzer struct {
	model    string
	generate generateFunc
}

// QuoteAnalyzerがusecase.QuoteAnalyzerを実装していることをコンパイル時に検証します。
var _ usecase.QuoteAnalyzer = (*QuoteAnalyzer)(nil)

// NewQuoteAnalyzer はADCを使用してQuoteAnalyzerの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewQuoteAnalyzer(ctx context.Context) (*QuoteAnalyzer, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := os.Getenv(EnvKeyModel)
	if model == "" {
		model = DefaultModel
	}
	return &QuoteAnalyzer{
		model: model,
		generate: func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

// AnalyzeQuote は株価から解説を生成します。Symbol と CompanyName は q の値を使います。
func (g *QuoteAnalyzer) AnalyzeQuote(ctx context.Context, q quoteentity.Quote) (*entity.Analysis, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema,
	}
	text, err := g.generate(ctx, g.model, buildPrompt(q), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	resp, err := parseResponse(text)
	if err != nil {
		return nil, err
	}
	return resp.toEntity(q), nil
}

func buildPrompt(q quoteentity.Quote) string {
	return fmt.Sprintf(promptTemplate, q.CompanyName, q.Symbol, q.Price.StringFixed(2),
		q.Change.StringFixed(2), quoteentity.FormatChangePercent(q.ChangePercent))
}

// parseResponse はモデルの出力をデコードします。コードフェンスで囲まれていても受け付けます。
func parseResponse(text string) (*analysisResponse, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var resp analysisResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &resp); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	resp.Summary = strings.TrimSpace(resp.Summary)
	if resp.Summary == "" {
		return nil, errEmptySummary
	}
	return &resp, nil
}

func (r *analysisResponse) toEntity(q quoteentity.Quote) *entity.Analysis {
	points := make([]string, 0, maxPoints)
	for _, p := range r.Points {
		if p = strings.TrimSpace(p); p != "" && len(points) < maxPoints {
			points = append(points, p)
		}
	}
	return &entity.Analysis{
		Symbol:      q.Symbol,
		CompanyName: q.CompanyName,
		Summary:     r.Summary,
		Points:      points,
		Stance:      stanceFor(r.Stance),
	}
}

// stanceFor は未知の値を hold に丸めます。
func stanceFor(s string) entity.Action {
	switch entity.Action(strings.ToLower(strings.TrimSpace(s))) {
	case entity.ActionBuy:
		return entity.ActionBuy
	case entity.ActionSell:
		return entity.ActionSell
	default:
		return entity.ActionHold
	}
}
