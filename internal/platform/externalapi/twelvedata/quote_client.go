package twelvedata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/quotes/domain"
	"watchlist_backend/internal/feature/quotes/domain/entity"
	"watchlist_backend/internal/feature/quotes/usecase"
	"watchlist_backend/internal/platform/externalapi"
	"watchlist_backend/internal/platform/externalapi/twelvedata/dto"
	infrahttp "watchlist_backend/internal/platform/http"
)

// ProviderName identifies Twelve Data in logs, metrics and Quote.Provider.
const ProviderName = "twelvedata"

// QuoteClient はTwelve Data外部APIから最新の株価を取得するQuoteProvider実装です。
type QuoteClient struct {
	cfg    Config
	client infrahttp.Doer
	now    func() time.Time
}

// QuoteClientがQuoteProviderを実装していることをコンパイル時に検証します。
var _ usecase.QuoteProvider = (*QuoteClient)(nil)

// NewQuoteClient は指定された設定とHTTPクライアントでQuoteClientの新しいインスタンスを生成します。
func NewQuoteClient(cfg Config, client infrahttp.Doer) *QuoteClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &QuoteClient{cfg: cfg, client: client, now: time.Now}
}

// Name returns the provider name.
func (t *QuoteClient) Name() string { return ProviderName }

// FetchQuote はTwelve Data APIから最新の株価を取得します。
func (t *QuoteClient) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = entity.NormalizeSymbol(symbol)
	if !entity.ValidSymbol(symbol) {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound, domain.ErrInvalidSymbol)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("apikey", t.cfg.APIKey)
	u := fmt.Sprintf("%s/quote?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	var body dto.QuoteResponse
	if err := externalapi.GetJSON(ctx, t.client, ProviderName, u, &body); err != nil {
		return entity.Quote{}, err
	}

	// Twelve Data はエラーでも HTTP 200 を返し、本文の status/code で通知します
	if body.Status == "error" {
		return entity.Quote{}, domain.NewProviderError(ProviderName, kindForCode(body.Code),
			fmt.Errorf("twelvedata: %s", body.Message))
	}
	if body.Close == "" {
		return entity.Quote{}, domain.NewProviderError(ProviderName, domain.KindNotFound,
			fmt.Errorf("twelvedata: empty quote for %s", symbol))
	}

	price, err := decimal.NewFromString(body.Close)
	if err != nil {
		return entity.Quote{}, malformed("close", body.Close, err)
	}
	change := decimal.Zero
	if body.Change != "" {
		if change, err = decimal.NewFromString(body.Change); err != nil {
			return entity.Quote{}, malformed("change", body.Change, err)
		}
	}
	var pct decimal.Decimal
	if body.PercentChange != "" {
		if pct, err = decimal.NewFromString(body.PercentChange); err != nil {
			return entity.Quote{}, malformed("percent_change", body.PercentChange, err)
		}
	} else {
		pct = entity.PercentFromChange(price, change)
	}

	capturedAt := t.now()
	if body.Timestamp > 0 {
		capturedAt = time.Unix(body.Timestamp, 0)
	}
	return entity.NewQuote(symbol, price, change, pct, body.Name, capturedAt, ProviderName), nil
}

// kindForCode maps the status code embedded in an error body.
func kindForCode(code int) domain.ErrorKind {
	if code == 0 {
		return domain.KindMalformed
	}
	if code == 400 {
		// 存在しないシンボルは 400 "symbol ... is invalid" で返されることがあります
		return domain.KindNotFound
	}
	return domain.KindForStatus(code)
}

func malformed(field, raw string, err error) error {
	return domain.NewProviderError(ProviderName, domain.KindMalformed,
		errors.Join(fmt.Errorf("parse %s %q", field, raw), err))
}
