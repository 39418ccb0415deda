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

const recommendationTable = "recommendations"

// AdvisorStore persists cached recommendation sets, one per user.
type AdvisorStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewAdvisorStore(db *surrealdb.DB, logger *common.Logger) *AdvisorStore {
	return &AdvisorStore{
		db:     db,
		logger: logger,
	}
}

func (s *AdvisorStore) GetRecommendations(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	set, err := surrealdb.Select[models.RecommendationSet](ctx, s.db, surrealmodels.NewRecordID(recommendationTable, userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select recommendations: %w", err)
	}
	if set == nil || set.UserID == "" {
		return nil, models.ErrNotFound
	}
	return set, nil
}

func (s *AdvisorStore) SaveRecommendations(ctx context.Context, set *models.RecommendationSet) error {
	sql := "UPSERT $rid CONTENT $set"
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID(recommendationTable, set.UserID),
		"set": set,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.RecommendationSet](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save recommendations after retries: %w", lastErr)
}

func (s *AdvisorStore) DeleteRecommendations(ctx context.Context, userID string) error {
	_, err := surrealdb.Delete[models.RecommendationSet](ctx, s.db, surrealmodels.NewRecordID(recommendationTable, userID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.AdvisorStore = (*AdvisorStore)(nil)
