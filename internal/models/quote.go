// Package models defines data structures for Finsight
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors shared across the adapter and service boundaries.
var (
	// ErrUpstreamUnavailable covers any quote-provider failure: network error,
	// timeout, rate limit, or non-200 response. Callers treat all three alike.
	ErrUpstreamUnavailable = errors.New("upstream quote source unavailable")

	// ErrNotFound indicates a symbol unknown to every configured quote source.
	ErrNotFound = errors.New("symbol not found")
)

// ValidationError reports a rejected input. Raised synchronously before any
// store or upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Quote is a normalized price snapshot for a ticker symbol.
// Produced by quote source adapters, never persisted directly.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"` // percent move since prior close
}

// CachedQuote pairs a quote with the time it was fetched.
type CachedQuote struct {
	Quote     Quote     `json:"quote"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how old the cached quote is relative to now.
func (c CachedQuote) Age(now time.Time) time.Duration {
	return now.Sub(c.FetchedAt)
}

// NormalizeSymbol uppercases and trims a ticker symbol. Symbols are normalized
// once at the boundary so every cache and store key is canonical.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// RefreshTarget names a symbol for a refresh cycle together with its stored
// change-of-record, the fallback used when a realtime (price-only) result is
// merged and nothing for the symbol is cached yet.
type RefreshTarget struct {
	Symbol    string  `json:"symbol"`
	ChangePct float64 `json:"change_pct"`
}
