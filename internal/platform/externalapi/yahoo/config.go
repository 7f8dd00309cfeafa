// Package yahoo provides a quote client for the unauthenticated Yahoo Finance chart API.
package yahoo

import (
	"os"
	"time"

	infrahttp "watchlist_backend/internal/platform/http"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo Finance client. No API key is needed.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig loads Yahoo configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{BaseURL: base, Timeout: infrahttp.DefaultProviderTimeout}
}
