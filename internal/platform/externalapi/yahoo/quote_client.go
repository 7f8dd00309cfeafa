package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/platform/externalapi"
	"watchlist_backend/internal/platform/externalapi/yahoo/dto"
	infrahttp "watchlist_backend/internal/platform/http"
)

// ProviderName identifies Yahoo Finance in logs, metrics and Quote.Provider.
const ProviderName = "yahoo"

// QuoteClient fetches quotes from the Yahoo Finance chart endpoint.
type QuoteClient struct {
	cfg    Config
	client infrahttp.Doer
	now    func() time.Time
}

var _ usecase.QuoteProvider = (*QuoteClient)(nil)

// NewQuoteClient creates a Yahoo QuoteClient.
func NewQuoteClient(cfg Config, client infrahttp.Doer) *QuoteClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &QuoteClient{cfg: cfg, client: client, now: time.Now}
}

func (y *QuoteClient) Name() string { return ProviderName }

// FetchQuote returns the latest quote for symbol.
func (y *QuoteClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if !entity.ValidSymbol(symbol) {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound, domain.ErrInvalidSymbol)
	}

	q := url.Values{}
	q.Set("range", "1d")
	q.Set("interval", "1d")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(y.cfg.BaseURL, "/"), url.PathEscape(symbol), q.Encode())

	var body dto.ChartResponse
	if err := externalapi.GetJSON(ctx, y.client, ProviderName, u, &body); err != nil {
		return entity.Quote{}, err
	}

	if e := body.Chart.Error; e != nil {
		kind := domain.KindMalformed
		if strings.EqualFold(e.Code, "Not Found") {
			kind = domain.KindNotFound
		}
		return entity.Quote{}, domain.NewProviderError(ProviderName, kind,
			fmt.Errorf("yahoo: %s: %s", e.Code, e.Description))
	}
	if len(body.Chart.Result) == 0 || !body.Chart.Result[0].Meta.RegularMarketPrice.Valid {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound,
			fmt.Errorf("yahoo: no chart result for %s", symbol))
	}

	meta := body.Chart.Result[0].Meta
	price := meta.RegularMarketPrice.Decimal

	prev := meta.ChartPreviousClose
	if !prev.Valid {
		prev = meta.PreviousClose
	}
	change := decimal.Zero
	if prev.Valid && prev.Decimal.IsPositive() {
		change = price.Sub(prev.Decimal)
	}

	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}

	capturedAt := y.now()
	if meta.RegularMarketTime > 0 {
		capturedAt = time.Unix(meta.RegularMarketTime, 0)
	}
	return entity.NewQuote(symbol, price, change, entity.PercentFromChange(price, change), name, capturedAt, ProviderName), nil
}
