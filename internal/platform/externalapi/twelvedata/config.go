// Package twelvedata provides a quote client for the Twelve Data stock market API.
package twelvedata

import (
	"os"
	"time"

	infrahttp "watchlist_backend/internal/platform/http"
)

// DefaultBaseURL is the public Twelve Data endpoint.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string        // API key (free tier allows 8 requests per minute)
	BaseURL string        // Base URL for the API
	Timeout time.Duration // Per-request timeout
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("TWELVE_DATA_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL: base,
		Timeout: infrahttp.DefaultProviderTimeout,
	}
}
