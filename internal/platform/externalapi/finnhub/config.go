// Package finnhub provides a quote client for the Finnhub stock API.
package finnhub

import (
	"os"
	"time"

	infrahttp "watchlist_backend/internal/platform/http"
)

// DefaultBaseURL is the public Finnhub REST endpoint.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Config holds configuration for the Finnhub API client.
type Config struct {
	APIKey  string        // API token (free tier)
	BaseURL string        // Base URL for the API
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Finnhub configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("FINNHUB_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("FINNHUB_API_KEY"),
		BaseURL: base,
		Timeout: infrahttp.DefaultProviderTimeout,
	}
}
