// Package usecase はsymbolsearchフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"watchlist_backend/internal/feature/symbolsearch/domain/entity"
)

const (
	// DefaultLimit は検索結果の既定件数です。
	DefaultLimit = 20
	// MaxLimit は検索結果の最大件数です。
	MaxLimit = 50
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// MinLogoConfidence 未満のロゴは検索に使いません。
	MinLogoConfidence = 0.5
	// logoMatchLimit はロゴ1件あたりの検索件数です。
	logoMatchLimit = 5
)

// SymbolRepository abstracts the persistence layer for symbol data.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	// Search returns active symbols whose code starts with query or whose name contains it,
	// ignoring case, in sort key order.
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
	// ListActive returns active symbols in sort key order.
	ListActive(ctx context.Context, limit int) ([]entity.Symbol, error)
}

// LogoDetector は画像からロゴを検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type LogoDetector interface {
	DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error)
}

// SearchUsecase provides ticker lookup by text or by logo image.
type SearchUsecase struct {
	repo     SymbolRepository
	detector LogoDetector
}

// NewSearchUsecase creates a SearchUsecase. detector may be nil, which disables SearchByLogo.
func NewSearchUsecase(repo SymbolRepository, detector LogoDetector) *SearchUsecase {
	return &SearchUsecase{repo: repo, detector: detector}
}

// Search returns matching active symbols. An empty query lists active symbols.
// limit is clamped to [1, MaxLimit]; 0 means DefaultLimit.
func (u *SearchUsecase) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	limit = clampLimit(limit)
	query = strings.TrimSpace(query)
	if query == "" {
		return u.repo.ListActive(ctx, limit)
	}
	return u.repo.Search(ctx, query, limit)
}

// SearchByLogo detects logos in the image and searches symbols by each logo's name.
// Logos below MinLogoConfidence are skipped. Matches keep detection order.
func (u *SearchUsecase) SearchByLogo(ctx context.Context, imageData []byte) ([]entity.LogoMatch, error) {
	if u.detector == nil {
		return nil, ErrLogoSearchDisabled
	}
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("%w: maximum is %d bytes", ErrImageTooLarge, MaxImageSize)
	}

	logos, err := u.detector.DetectLogos(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detect logos: %w", err)
	}

	matches := make([]entity.LogoMatch, 0, len(logos))
	for _, l := range logos {
		if l.Confidence < MinLogoConfidence {
			continue
		}
		symbols, err := u.repo.Search(ctx, l.Name, logoMatchLimit)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", l.Name, err)
		}
		if len(symbols) == 0 {
			slog.Debug("no symbol for detected logo", "logo", l.Name)
		}
		matches = append(matches, entity.LogoMatch{Logo: l, Symbols: symbols})
	}
	return matches, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
