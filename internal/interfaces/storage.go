// Package interfaces defines service contracts for Finsight
package interfaces

import (
	"context"

	"github.com/finsightapp/finsight/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	UserStore() UserStore
	HoldingStore() HoldingStore
	FinsightStore() FinsightStore
	AdvisorStore() AdvisorStore

	// Lifecycle
	Close() error
}

// UserStore manages user accounts and key-value configuration.
type UserStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	// Per-user key-value config
	GetUserKV(ctx context.Context, userID, key string) (*models.UserKeyValue, error)
	SetUserKV(ctx context.Context, userID, key, value string) error

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
}

// HoldingStore persists portfolio holdings, scoped by user.
type HoldingStore interface {
	// List returns the user's holdings ordered by creation time.
	List(ctx context.Context, userID string) ([]*models.HoldingRecord, error)

	// Get retrieves one holding by ID within the user's scope.
	Get(ctx context.Context, userID, id string) (*models.HoldingRecord, error)

	// Insert persists a new holding. The record's ID must already be set.
	Insert(ctx context.Context, holding *models.HoldingRecord) error

	// UpdateShares sets the share count of an existing holding.
	UpdateShares(ctx context.Context, userID, id string, shares int64) error

	// ReconcilePrice writes fresher price/change values into the record.
	// Best-effort from the caller's perspective: a failure leaves the store
	// stale until the next successful cycle.
	ReconcilePrice(ctx context.Context, userID, id string, price, changePct float64) error

	// Delete removes a holding.
	Delete(ctx context.Context, userID, id string) error

	// ListRefreshTargets returns the deduplicated symbols held across all
	// users with a representative change-of-record, for the background
	// refresher.
	ListRefreshTargets(ctx context.Context) ([]models.RefreshTarget, error)
}

// FinsightStore persists saved stock insights, scoped by user.
type FinsightStore interface {
	List(ctx context.Context, userID string) ([]*models.FinsightRecord, error)
	Insert(ctx context.Context, record *models.FinsightRecord) error
	Delete(ctx context.Context, userID, id string) error
}

// AdvisorStore persists quiz profiles and cached recommendation sets.
type AdvisorStore interface {
	GetRecommendations(ctx context.Context, userID string) (*models.RecommendationSet, error)
	SaveRecommendations(ctx context.Context, set *models.RecommendationSet) error
	DeleteRecommendations(ctx context.Context, userID string) error
}
