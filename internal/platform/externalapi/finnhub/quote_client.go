package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/platform/externalapi"
	"watchlist_backend/internal/platform/externalapi/finnhub/dto"
	infrahttp "watchlist_backend/internal/platform/http"
)

// ProviderName identifies Finnhub in logs, metrics and Quote.Provider.
const ProviderName = "finnhub"

// QuoteClient fetches quotes from Finnhub.
type QuoteClient struct {
	cfg    Config
	client infrahttp.Doer
	now    func() time.Time
}

var _ usecase.QuoteProvider = (*QuoteClient)(nil)

// NewQuoteClient creates a Finnhub QuoteClient.
func NewQuoteClient(cfg Config, client infrahttp.Doer) *QuoteClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &QuoteClient{cfg: cfg, client: client, now: time.Now}
}

func (f *QuoteClient) Name() string { return ProviderName }

// FetchQuote returns the latest quote for symbol.
// Finnhub does not return a company name, so CompanyName falls back to the symbol.
func (f *QuoteClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if !entity.ValidSymbol(symbol) {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound, domain.ErrInvalidSymbol)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", f.cfg.APIKey)
	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(f.cfg.BaseURL, "/"), q.Encode())

	var body dto.QuoteResponse
	if err := externalapi.GetJSON(ctx, f.client, ProviderName, u, &body); err != nil {
		return entity.Quote{}, err
	}

	if body.Current.IsZero() && body.Timestamp == 0 {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound,
			fmt.Errorf("finnhub: no data for %s", symbol))
	}

	change := body.Change.Decimal
	if !body.Change.Valid && body.PreviousClose.IsPositive() {
		change = body.Current.Sub(body.PreviousClose)
	}
	pct := body.PercentChange.Decimal
	if !body.PercentChange.Valid {
		pct = entity.PercentFromChange(body.Current, change)
	}

	capturedAt := f.now()
	if body.Timestamp > 0 {
		capturedAt = time.Unix(body.Timestamp, 0)
	}
	return entity.NewQuote(symbol, body.Current, change, pct, "", capturedAt, ProviderName), nil
}
