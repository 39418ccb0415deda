package surrealdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightapp/finsight/internal/models"
)

func TestAdvisorStore_RoundTrip(t *testing.T) {
	store := NewAdvisorStore(testDB(t), testLogger())
	ctx := context.Background()

	set := &models.RecommendationSet{
		UserID: "u1",
		Profile: models.RiskProfile{
			UserID:        "u1",
			RiskTolerance: "balanced",
			HorizonYears:  10,
			MonthlyBudget: 500,
			Interests:     []string{"tech", "clean energy"},
		},
		Items: []models.Recommendation{
			{Symbol: "VOO", Name: "Vanguard S&P 500 ETF", Price: 512.3, Reason: "broad base"},
			{Symbol: "ICLN", Name: "iShares Global Clean Energy", Price: 14.2, Reason: "interest match"},
		},
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveRecommendations(ctx, set))

	got, err := store.GetRecommendations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "VOO", got.Items[0].Symbol)
	assert.Equal(t, "balanced", got.Profile.RiskTolerance)
}

func TestAdvisorStore_GetMissing(t *testing.T) {
	store := NewAdvisorStore(testDB(t), testLogger())

	_, err := store.GetRecommendations(context.Background(), "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdvisorStore_DeleteResetsQuiz(t *testing.T) {
	store := NewAdvisorStore(testDB(t), testLogger())
	ctx := context.Background()

	set := &models.RecommendationSet{
		UserID:      "u1",
		Items:       []models.Recommendation{{Symbol: "VTI", Name: "Vanguard Total Market"}},
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRecommendations(ctx, set))
	require.NoError(t, store.DeleteRecommendations(ctx, "u1"))

	_, err := store.GetRecommendations(ctx, "u1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Idempotent delete.
	assert.NoError(t, store.DeleteRecommendations(ctx, "u1"))
}
