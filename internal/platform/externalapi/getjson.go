// Package externalapi holds helpers shared by the upstream quote provider clients.
package externalapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"watchlist_backend/internal/feature/quotes/domain"
	infrahttp "watchlist_backend/internal/platform/http"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 1 << 20

// 一部のプロバイダーは User-Agent の無いリクエストを拒否します
const userAgent = "watchlist-backend/1.0"

// GetJSON issues a GET to rawURL and decodes the JSON body into out.
// Every failure is returned as a *domain.ProviderError classified for the fallback chain.
// Context cancellation is returned unwrapped so callers can tell it apart from provider faults.
func GetJSON(ctx context.Context, client infrahttp.Doer, provider, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.NewProviderError(provider, domain.KindMalformed, redactURLError(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return domain.NewProviderError(provider, domain.KindUnavailable, redactURLError(err))
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "provider", provider, "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))
		return domain.NewProviderError(provider, domain.KindForStatus(res.StatusCode),
			fmt.Errorf("%s http %d", provider, res.StatusCode))
	}

	if err := json.NewDecoder(io.LimitReader(res.Body, maxBodyBytes)).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return domain.NewProviderError(provider, domain.KindMalformed, fmt.Errorf("decode: %w", err))
	}
	return nil
}

// redactURLError drops the query string from a *url.Error.
// Provider keys travel as query parameters and must not reach logs or responses.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	return &url.Error{Op: uerr.Op, URL: stripQuery(uerr.URL), Err: uerr.Err}
}

func stripQuery(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<redacted>"
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.User = nil
	return parsed.String()
}
