// Package interfaces defines service contracts for Finsight
package interfaces

import (
	"context"

	"github.com/finsightapp/finsight/internal/models"
)

// QuoteService owns the shared quote cache and the merge policy across the
// daily and realtime sources.
type QuoteService interface {
	// Hydrate returns cached quotes no older than the hydrate window for the
	// given symbols. Pure cache read, no network: symbols without a usable
	// entry are absent from the result and callers fall back to the
	// store-of-record.
	Hydrate(symbols []string) map[string]models.Quote

	// Lookup returns a quote for a symbol, serving from cache when fresh and
	// fetching from the daily source otherwise. Returns models.ErrNotFound
	// when no source recognizes the symbol.
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)

	// RefreshDaily runs one coarse refresh cycle: a bulk daily fetch merged
	// first, then individual fallback fetches for symbols the bulk result
	// missed. Per-symbol failures are logged and swallowed.
	RefreshDaily(ctx context.Context, symbols []string)

	// RefreshRealtime runs one fine refresh cycle: per-symbol realtime price
	// fetches merged with the preserve-changePercent rule. Each target carries
	// the store-of-record change used only when nothing is cached yet.
	RefreshRealtime(ctx context.Context, targets []models.RefreshTarget)
}

// PortfolioService manages holdings and derives portfolio valuation.
// All operations are scoped to the user resolved from the context; with no
// authenticated user the service operates in ephemeral, non-persisted mode.
type PortfolioService interface {
	// ListHoldings returns the user's holdings priced with the freshest
	// available quotes, and opportunistically reconciles divergent prices
	// back into the store.
	ListHoldings(ctx context.Context) ([]*models.HoldingView, error)

	// AddHolding validates and inserts a new position. The symbol must be
	// priceable by at least one quote source; otherwise the add is refused
	// with models.ErrNotFound.
	AddHolding(ctx context.Context, symbol, name string, shares int64) (*models.HoldingRecord, error)

	// UpdateShares sets the share count for a holding. Shares must stay > 0.
	UpdateShares(ctx context.Context, id string, shares int64) (*models.HoldingRecord, error)

	// SellShares removes shares from a holding. Selling every remaining share
	// deletes the record; selling more than held is rejected.
	SellShares(ctx context.Context, id string, shares int64) error

	// RemoveHolding deletes a holding outright.
	RemoveHolding(ctx context.Context, id string) error

	// Totals computes aggregate valuation from holdings and the quote cache.
	Totals(ctx context.Context) (*models.PortfolioTotals, error)

	// RefreshTargets returns the deduplicated symbols across all persisted
	// holdings with their change-of-record, for the background refresher.
	RefreshTargets(ctx context.Context) ([]models.RefreshTarget, error)
}

// FinsightService manages saved stock insights (snapshot-in-time records).
type FinsightService interface {
	List(ctx context.Context) ([]*models.FinsightRecord, error)
	Add(ctx context.Context, symbol, name, reason string) (*models.FinsightRecord, error)
	Remove(ctx context.Context, id string) error
}

// AdvisorService runs the recommendation quiz flow. Results are cached in the
// store per user and regenerated only on explicit reset.
type AdvisorService interface {
	// Get returns the cached recommendation set, or models.ErrNotFound when
	// the user has not completed the quiz.
	Get(ctx context.Context) (*models.RecommendationSet, error)

	// Generate maps a quiz profile to recommendations and caches the result.
	Generate(ctx context.Context, profile *models.RiskProfile) (*models.RecommendationSet, error)

	// Reset discards the cached recommendations so the next quiz regenerates.
	Reset(ctx context.Context) error
}
