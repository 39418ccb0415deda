// Package interfaces defines service contracts for Finsight
package interfaces

import (
	"context"

	"github.com/finsightapp/finsight/internal/models"
)

// QuoteSource is the uniform contract over upstream quote providers. Concrete
// adapters normalize vendor responses to models.Quote; any network failure,
// timeout, or rate limit surfaces as models.ErrUpstreamUnavailable, and a
// symbol the vendor does not know surfaces as models.ErrNotFound.
//
// Two adapter roles exist, distinguished by policy rather than by type: the
// daily source is authoritative for ChangePct, the realtime source for Price.
type QuoteSource interface {
	// FetchQuote retrieves a single normalized quote.
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// FetchAll retrieves quotes for many symbols, best-effort. Symbols the
	// provider could not price are simply absent from the result; only a
	// wholesale failure returns an error.
	FetchAll(ctx context.Context, symbols []string) ([]*models.Quote, error)
}

// AdvisorClient generates ranked stock recommendations from a risk profile.
type AdvisorClient interface {
	// GenerateRecommendations maps a quiz profile to a ranked suggestion list.
	GenerateRecommendations(ctx context.Context, profile *models.RiskProfile) ([]models.Recommendation, error)
}
