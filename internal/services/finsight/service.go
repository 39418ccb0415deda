// Package finsight provides saved stock insights: point-in-time snapshots of
// a symbol's price and change, captured when the user saves them and never
// refreshed afterwards.
package finsight

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

// Service implements FinsightService
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteService
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new finsight service
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		quotes:  quotes,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the user's saved insights ordered by creation time.
func (s *Service) List(ctx context.Context) ([]*models.FinsightRecord, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return []*models.FinsightRecord{}, nil
	}
	return s.storage.FinsightStore().List(ctx, userID)
}

// Add snapshots a symbol at its current quote and saves it. The symbol must
// be priceable; unknown symbols are refused with models.ErrNotFound.
func (s *Service) Add(ctx context.Context, symbol, name, reason string) (*models.FinsightRecord, error) {
	key := models.NormalizeSymbol(symbol)
	if key == "" {
		return nil, models.NewValidationError("symbol", "must not be empty")
	}

	quote, err := s.quotes.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = key
	}

	record := &models.FinsightRecord{
		ID:        uuid.New().String(),
		UserID:    common.ResolveUserID(ctx),
		Symbol:    key,
		Name:      name,
		Price:     quote.Price,
		ChangePct: quote.ChangePct,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}

	if record.UserID == "" {
		// Ephemeral mode: hand back the snapshot without persisting.
		return record, nil
	}

	if err := s.storage.FinsightStore().Insert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().Str("symbol", key).Msg("Insight saved")
	return record, nil
}

// Remove deletes a saved insight.
func (s *Service) Remove(ctx context.Context, id string) error {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return models.ErrNotFound
	}
	return s.storage.FinsightStore().Delete(ctx, userID, id)
}

// Ensure Service implements FinsightService
var _ interfaces.FinsightService = (*Service)(nil)
