package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightapp/finsight/internal/models"
)

func testHolding(userID, id, symbol string, shares int64) *models.HoldingRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.HoldingRecord{
		ID:           id,
		UserID:       userID,
		Symbol:       symbol,
		Name:         symbol,
		Shares:       shares,
		CurrentPrice: 100,
		ChangePct:    1.5,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHoldingStore_InsertAndGet(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testHolding("u1", "h1", "AAPL", 10)))

	got, err := store.Get(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, int64(10), got.Shares)
	assert.Equal(t, 100.0, got.CurrentPrice)
}

func TestHoldingStore_GetMissing(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())

	_, err := store.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestHoldingStore_ListScopedAndOrdered(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	first := testHolding("u1", "h1", "AAPL", 10)
	second := testHolding("u1", "h2", "MSFT", 5)
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	other := testHolding("u2", "h3", "NVDA", 1)

	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))
	require.NoError(t, store.Insert(ctx, other))

	holdings, err := store.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "MSFT", holdings[1].Symbol)
}

func TestHoldingStore_UpdateShares(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testHolding("u1", "h1", "AAPL", 10)))
	require.NoError(t, store.UpdateShares(ctx, "u1", "h1", 25))

	got, err := store.Get(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.Shares)
}

func TestHoldingStore_ReconcilePrice(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testHolding("u1", "h1", "AAPL", 10)))
	require.NoError(t, store.ReconcilePrice(ctx, "u1", "h1", 110.5, 3.2))

	got, err := store.Get(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, 110.5, got.CurrentPrice)
	assert.Equal(t, 3.2, got.ChangePct)
	// Shares untouched by reconciliation.
	assert.Equal(t, int64(10), got.Shares)
}

func TestHoldingStore_Delete(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testHolding("u1", "h1", "AAPL", 10)))
	require.NoError(t, store.Delete(ctx, "u1", "h1"))

	_, err := store.Get(ctx, "u1", "h1")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	// Deleting again is a no-op, not an error.
	assert.NoError(t, store.Delete(ctx, "u1", "h1"))
}

func TestHoldingStore_ListRefreshTargets(t *testing.T) {
	store := NewHoldingStore(testDB(t), testLogger())
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testHolding("u1", "h1", "AAPL", 10)))
	require.NoError(t, store.Insert(ctx, testHolding("u2", "h2", "AAPL", 3)))
	require.NoError(t, store.Insert(ctx, testHolding("u1", "h3", "MSFT", 5)))

	targets, err := store.ListRefreshTargets(ctx)
	require.NoError(t, err)

	symbols := make(map[string]bool)
	for _, target := range targets {
		assert.False(t, symbols[target.Symbol], "symbol %s duplicated", target.Symbol)
		symbols[target.Symbol] = true
	}
	assert.True(t, symbols["AAPL"])
	assert.True(t, symbols["MSFT"])
	assert.Len(t, targets, 2)
}
