package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/recommendation/domain/entity"
)

func appleQuote() quoteentity.Quote {
	return quoteentity.NewQuote("AAPL", decimal.RequireFromString("189.5"), decimal.RequireFromString("-1.2"),
		decimal.RequireFromString("-0.629"), "Apple Inc.", time.Date(2025, 1, 15, 21, 0, 0, 0, time.UTC), "twelvedata")
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(appleQuote())

	assert.Contains(t, prompt, "Apple Inc.（ティッカー: AAPL）")
	assert.Contains(t, prompt, "現在値189.50")
	assert.Contains(t, prompt, "前日比-1.20（-0.63%）")
}

// TestParseResponse はモデル出力のデコードと正規化を検証します。
func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		wantErr    bool
		wantPoints []string
		wantStance entity.Action
	}{
		{
			name:       "plain json",
			text:       `{"summary":"堅調","points":["増収","自社株買い"],"stance":"buy"}`,
			wantPoints: []string{"増収", "自社株買い"},
			wantStance: entity.ActionBuy,
		},
		{
			name:       "fenced json",
			text:       "```json\n{\"summary\":\"軟調\",\"points\":[],\"stance\":\"SELL\"}\n```",
			wantPoints: []string{},
			wantStance: entity.ActionSell,
		},
		{
			name:       "unknown stance and extra points",
			text:       `{"summary":"横ばい","points":["a"," ","b","c","d"],"stance":"accumulate"}`,
			wantPoints: []string{"a", "b", "c"},
			wantStance: entity.ActionHold,
		},
		{
			name:    "empty summary",
			text:    `{"summary":"  ","points":["a"],"stance":"buy"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			text:    "申し訳ありませんが回答できません",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := parseResponse(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			a := resp.toEntity(appleQuote())
			assert.Equal(t, "AAPL", a.Symbol)
			assert.Equal(t, "Apple Inc.", a.CompanyName)
			assert.Equal(t, tt.wantPoints, a.Points)
			assert.Equal(t, tt.wantStance, a.Stance)
		})
	}
}

// TestQuoteAnalyzer_AnalyzeQuote はJSONスキーマ付きでモデルを呼び出し、結果を解説に変換することを検証します。
func TestQuoteAnalyzer_AnalyzeQuote(t *testing.T) {
	t.Parallel()

	var gotModel, gotPrompt string
	var gotCfg *genai.GenerateContentConfig
	g := &QuoteAnalyzer{
		model: "test-model",
		generate: func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
			gotModel, gotPrompt, gotCfg = model, prompt, cfg
			return `{"summary":"小幅安","points":["利益確定売り"],"stance":"hold"}`, nil
		},
	}

	a, err := g.AnalyzeQuote(context.Background(), appleQuote())

	require.NoError(t, err)
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, buildPrompt(appleQuote()), gotPrompt)
	require.NotNil(t, gotCfg)
	assert.Equal(t, "application/json", gotCfg.ResponseMIMEType)
	assert.Same(t, responseSchema, gotCfg.ResponseSchema)
	assert.Equal(t, "小幅安", a.Summary)
	assert.Equal(t, []string{"利益確定売り"}, a.Points)
	assert.Equal(t, entity.ActionHold, a.Stance)
}

func TestQuoteAnalyzer_AnalyzeQuote_APIError(t *testing.T) {
	t.Parallel()

	errAPI := errors.New("quota exceeded")
	g := &QuoteAnalyzer{
		model: DefaultModel,
		generate: func(context.Context, string, string, *genai.GenerateContentConfig) (string, error) {
			return "", errAPI
		},
	}

	_, err := g.AnalyzeQuote(context.Background(), appleQuote())

	assert.ErrorIs(t, err, errAPI)
}
