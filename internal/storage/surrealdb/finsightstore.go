package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

const finsightTable = "finsights"

// FinsightStore persists saved stock insights.
type FinsightStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewFinsightStore(db *surrealdb.DB, logger *common.Logger) *FinsightStore {
	return &FinsightStore{
		db:     db,
		logger: logger,
	}
}

func finsightRecordID(userID, id string) string {
	return userID + "_" + id
}

func (s *FinsightStore) List(ctx context.Context, userID string) ([]*models.FinsightRecord, error) {
	sql := "SELECT * FROM finsights WHERE user_id = $user_id ORDER BY created_at DESC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.FinsightRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}

	var records []*models.FinsightRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			records = append(records, &(*results)[0].Result[i])
		}
	}
	return records, nil
}

func (s *FinsightStore) Insert(ctx context.Context, record *models.FinsightRecord) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(finsightTable, finsightRecordID(record.UserID, record.ID)),
		"record": record,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.FinsightRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to insert insight after retries: %w", lastErr)
}

func (s *FinsightStore) Delete(ctx context.Context, userID, id string) error {
	_, err := surrealdb.Delete[models.FinsightRecord](ctx, s.db, surrealmodels.NewRecordID(finsightTable, finsightRecordID(userID, id)))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete insight: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.FinsightStore = (*FinsightStore)(nil)
