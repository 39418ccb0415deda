package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

const holdingTable = "portfolio"

// HoldingStore persists portfolio holdings.
type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewHoldingStore(db *surrealdb.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{
		db:     db,
		logger: logger,
	}
}

func holdingRecordID(userID, id string) string {
	return userID + "_" + id
}

func (s *HoldingStore) List(ctx context.Context, userID string) ([]*models.HoldingRecord, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.HoldingRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	var holdings []*models.HoldingRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			holdings = append(holdings, &(*results)[0].Result[i])
		}
	}
	return holdings, nil
}

func (s *HoldingStore) Get(ctx context.Context, userID, id string) (*models.HoldingRecord, error) {
	record, err := surrealdb.Select[models.HoldingRecord](ctx, s.db, surrealmodels.NewRecordID(holdingTable, holdingRecordID(userID, id)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select holding: %w", err)
	}
	if record == nil || record.ID == "" {
		return nil, models.ErrNotFound
	}
	return record, nil
}

func (s *HoldingStore) Insert(ctx context.Context, holding *models.HoldingRecord) error {
	sql := "UPSERT $rid CONTENT $holding"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID(holdingTable, holdingRecordID(holding.UserID, holding.ID)),
		"holding": holding,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.HoldingRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to insert holding after retries: %w", lastErr)
}

func (s *HoldingStore) UpdateShares(ctx context.Context, userID, id string, shares int64) error {
	sql := "UPDATE $rid SET shares = $shares, updated_at = $updated_at"
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID(holdingTable, holdingRecordID(userID, id)),
		"shares":     shares,
		"updated_at": time.Now().UTC(),
	}

	if _, err := surrealdb.Query[[]models.HoldingRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update shares: %w", err)
	}
	return nil
}

func (s *HoldingStore) ReconcilePrice(ctx context.Context, userID, id string, price, changePct float64) error {
	sql := "UPDATE $rid SET current_price = $price, change_pct = $change_pct, updated_at = $updated_at"
	vars := map[string]any{
		"rid":        surrealmodels.NewRecordID(holdingTable, holdingRecordID(userID, id)),
		"price":      price,
		"change_pct": changePct,
		"updated_at": time.Now().UTC(),
	}

	if _, err := surrealdb.Query[[]models.HoldingRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to reconcile price: %w", err)
	}
	return nil
}

func (s *HoldingStore) Delete(ctx context.Context, userID, id string) error {
	_, err := surrealdb.Delete[models.HoldingRecord](ctx, s.db, surrealmodels.NewRecordID(holdingTable, holdingRecordID(userID, id)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// ListRefreshTargets returns one target per distinct held symbol across all
// users. The change-of-record is representative, not aggregated: any holding's
// stored value serves as the cold-cache fallback.
func (s *HoldingStore) ListRefreshTargets(ctx context.Context) ([]models.RefreshTarget, error) {
	sql := "SELECT symbol, change_pct FROM portfolio"

	results, err := surrealdb.Query[[]models.RefreshTarget](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh targets: %w", err)
	}

	seen := make(map[string]struct{})
	var targets []models.RefreshTarget
	if results != nil && len(*results) > 0 {
		for _, target := range (*results)[0].Result {
			key := models.NormalizeSymbol(target.Symbol)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			target.Symbol = key
			targets = append(targets, target)
		}
	}
	return targets, nil
}

// Compile-time check
var _ interfaces.HoldingStore = (*HoldingStore)(nil)
