// Package domain defines domain-level errors for the quotes feature.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSymbol indicates a symbol that is not 1-10 alphanumeric characters.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrAllProvidersFailed is matched by every AggregateFetchError.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrTimedOut marks a symbol whose lookup was abandoned because the caller's context ended.
	ErrTimedOut = errors.New("timed out")
)

// ErrorKind classifies why a single provider could not return a quote.
type ErrorKind int

const (
	// KindUnavailable covers network failures, timeouts and 5xx responses.
	KindUnavailable ErrorKind = iota
	// KindRateLimited means the provider explicitly throttled us.
	KindRateLimited
	// KindNotFound means the provider does not know the symbol.
	KindNotFound
	// KindMalformed means the response could not be parsed.
	KindMalformed
)

// String returns a short lower-case label, also used as a metrics label.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotFound:
		return "not_found"
	case KindMalformed:
		return "malformed"
	default:
		return "unavailable"
	}
}

// ProviderError is returned by a provider client for one failed fetch.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindForStatus maps an HTTP status code from a provider to an ErrorKind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == 429:
		return KindRateLimited
	case code == 404:
		return KindNotFound
	case code == 401, code == 403:
		// キーの失効や権限不足はデータではなくプロバイダー側の問題として扱う
		return KindUnavailable
	case code >= 500:
		return KindUnavailable
	default:
		return KindMalformed
	}
}

// AggregateFetchError is returned when every provider in the chain failed for a symbol.
// Failures holds one entry per attempted provider, in chain order.
type AggregateFetchError struct {
	Symbol   string
	Failures []*ProviderError
}

func (e *AggregateFetchError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, f.Error())
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("%s: %s (no providers configured)", e.Symbol, ErrAllProvidersFailed)
	}
	return fmt.Sprintf("%s: %s: %s", e.Symbol, ErrAllProvidersFailed, strings.Join(reasons, "; "))
}

// Is lets errors.Is(err, ErrAllProvidersFailed) match.
func (e *AggregateFetchError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}
