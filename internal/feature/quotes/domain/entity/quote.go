// Package entity defines the domain models for the quotes feature.
package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTTL is how long a cached quote is served before it is considered stale.
	DefaultTTL = 15 * time.Minute
	// DefaultRetention is how long cached quote rows are kept before the purge sweep removes them.
	DefaultRetention = 30 * 24 * time.Hour
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSymbol reports whether s (already normalized) is 1-10 alphanumeric characters.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// Quote is a point-in-time price snapshot for a symbol.
// Values are built with NewQuote and never modified afterwards; a refresh produces a new Quote.
type Quote struct {
	Symbol        string          // Upper-case ticker symbol
	Price         decimal.Decimal // Last traded price, never negative
	Change        decimal.Decimal // Absolute change vs previous close
	ChangePercent decimal.Decimal // Signed percent change vs previous close
	CompanyName   string          // Display name, defaults to Symbol
	CapturedAt    time.Time       // As-of time of Price and Change (UTC)
	Provider      string          // Upstream source that produced the quote
}

// NewQuote builds a normalized Quote. A negative price is clamped to zero and an empty
// company name falls back to the symbol.
func NewQuote(symbol string, price, change, changePercent decimal.Decimal, companyName string, capturedAt time.Time, provider string) Quote {
	symbol = NormalizeSymbol(symbol)
	if price.IsNegative() {
		price = decimal.Zero
	}
	if strings.TrimSpace(companyName) == "" {
		companyName = symbol
	}
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	return Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		CompanyName:   companyName,
		CapturedAt:    capturedAt.UTC(),
		Provider:      provider,
	}
}

// PercentFromChange derives the percent change from a price and its absolute change.
// It returns zero when the previous close (price - change) is not positive.
func PercentFromChange(price, change decimal.Decimal) decimal.Decimal {
	prev := price.Sub(change)
	if !prev.IsPositive() {
		return decimal.Zero
	}
	return change.Div(prev).Mul(decimal.NewFromInt(100))
}

// FormatChangePercent renders a signed percentage with two decimals, e.g. "+1.23%".
func FormatChangePercent(p decimal.Decimal) string {
	s := p.StringFixed(2)
	if !p.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}

// CachedQuote wraps a Quote with the time it was written to the cache.
type CachedQuote struct {
	Quote    Quote
	CachedAt time.Time
	TTL      time.Duration
}

// IsValidAt reports whether the cached quote is still fresh at now.
func (c *CachedQuote) IsValidAt(now time.Time) bool {
	return now.Sub(c.CachedAt) < c.TTL
}

// IsValid reports whether the cached quote is still fresh.
func (c *CachedQuote) IsValid() bool {
	return c.IsValidAt(time.Now())
}
