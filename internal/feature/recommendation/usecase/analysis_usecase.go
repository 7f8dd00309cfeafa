package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	quoteentity "watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/recommendation/domain/entity"
)

// MaxCompanyNameLength は企業名の最大文字数（rune数）です。
const MaxCompanyNameLength = 100

// validCompanyName は企業名に許可される文字パターンです（英数字・日本語・スペース・中黒）。
var validCompanyName = regexp.MustCompile(`^[\p{L}\p{N}\s・\-\.&,]+$`)

// QuoteAnalyzer は株価スナップショットから銘柄解説を生成するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// q.CompanyName は検証済みの値が渡されます。
type QuoteAnalyzer interface {
	AnalyzeQuote(ctx context.Context, q quoteentity.Quote) (*entity.Analysis, error)
}

// QuoteGetter は1銘柄の株価を取得します。
type QuoteGetter interface {
	GetQuote(ctx context.Context, symbol string) (quoteentity.Quote, error)
}

// AnalysisUsecase は銘柄のAI解説を生成します。
type AnalysisUsecase struct {
	quotes   QuoteGetter
	analyzer QuoteAnalyzer
}

// NewAnalysisUsecase はAnalysisUsecaseの新しいインスタンスを生成します。analyzer は nil でも構いません。
func NewAnalysisUsecase(quotes QuoteGetter, analyzer QuoteAnalyzer) *AnalysisUsecase {
	return &AnalysisUsecase{quotes: quotes, analyzer: analyzer}
}

// Analyze は最新の株価を取得し、その内容を元に解説を生成します。
func (u *AnalysisUsecase) Analyze(ctx context.Context, symbol string) (*entity.Analysis, error) {
	if u.analyzer == nil {
		return nil, ErrAnalyzerDisabled
	}
	q, err := u.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(q.CompanyName)
	if name == "" || utf8.RuneCountInString(name) > MaxCompanyNameLength || !validCompanyName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCompanyName, name)
	}

	q.CompanyName = name
	a, err := u.analyzer.AnalyzeQuote(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("analyzer failed for %q: %w", q.Symbol, err)
	}
	// 解説の対象は常に取得した株価の銘柄とする
	a.Symbol = q.Symbol
	a.CompanyName = name
	if a.Stance == "" {
		a.Stance = entity.ActionHold
	}
	return a, nil
}
