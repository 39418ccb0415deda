// Package portfolio provides holding management and portfolio valuation.
// All operations are scoped to the user resolved from the context; with no
// authenticated user the service runs in ephemeral mode and never touches
// the store.
package portfolio

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

// reconcileEpsilon is the minimum price divergence (in dollars) worth writing
// back to the store.
const reconcileEpsilon = 0.005

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	quotes  interfaces.QuoteService
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing

	// reconcile is the best-effort write-back hook; replaced in tests to
	// observe invocations without racing on goroutines.
	reconcile func(userID, id string, price, changePct float64)
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, quotes interfaces.QuoteService, logger *common.Logger) *Service {
	s := &Service{
		storage: storage,
		quotes:  quotes,
		logger:  logger,
		now:     time.Now,
	}
	s.reconcile = s.reconcileAsync
	return s
}

// ListHoldings returns the user's holdings priced with the freshest available
// quotes. Holdings whose cached price diverges from the store-of-record are
// reconciled back in the background; the response never waits on those writes.
func (s *Service) ListHoldings(ctx context.Context) ([]*models.HoldingView, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		// Ephemeral mode: nothing persisted, nothing to list.
		return []*models.HoldingView{}, nil
	}

	holdings, err := s.storage.HoldingStore().List(ctx, userID)
	if err != nil {
		return nil, err
	}

	hydrated := s.quotes.Hydrate(symbolsOf(holdings))

	views := make([]*models.HoldingView, 0, len(holdings))
	for _, holding := range holdings {
		view := &models.HoldingView{
			HoldingRecord:      *holding,
			EffectivePrice:     holding.CurrentPrice,
			EffectiveChangePct: holding.ChangePct,
		}

		if quote, ok := hydrated[holding.Symbol]; ok {
			view.EffectivePrice = quote.Price
			view.EffectiveChangePct = quote.ChangePct
			view.Live = true

			// Debounce: a record already reconciled within the current
			// realtime tick is left alone.
			if math.Abs(quote.Price-holding.CurrentPrice) > reconcileEpsilon &&
				!common.IsFresh(holding.UpdatedAt, common.FreshnessRealtime) {
				s.reconcile(userID, holding.ID, quote.Price, quote.ChangePct)
			}
		}

		view.MarketValue = float64(holding.Shares) * view.EffectivePrice
		views = append(views, view)
	}

	return views, nil
}

// symbolsOf collects the symbols held, in holding order.
func symbolsOf(holdings []*models.HoldingRecord) []string {
	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	return symbols
}

// AddHolding validates and inserts a new position. The symbol must be
// priceable by at least one quote source; unknown symbols are refused with
// models.ErrNotFound rather than stored unpriceable.
func (s *Service) AddHolding(ctx context.Context, symbol, name string, shares int64) (*models.HoldingRecord, error) {
	key := models.NormalizeSymbol(symbol)
	if key == "" {
		return nil, models.NewValidationError("symbol", "must not be empty")
	}
	if shares <= 0 {
		return nil, models.NewValidationError("shares", "must be greater than zero")
	}

	quote, err := s.quotes.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = key
	}

	now := s.now().UTC()
	holding := &models.HoldingRecord{
		ID:           uuid.New().String(),
		UserID:       common.ResolveUserID(ctx),
		Symbol:       key,
		Name:         name,
		Shares:       shares,
		CurrentPrice: quote.Price,
		ChangePct:    quote.ChangePct,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if holding.UserID == "" {
		// Ephemeral mode: return the priced record without persisting.
		return holding, nil
	}

	if err := s.storage.HoldingStore().Insert(ctx, holding); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("symbol", key).
		Int64("shares", shares).
		Msg("Holding added")

	return holding, nil
}

// UpdateShares sets the share count for a holding.
func (s *Service) UpdateShares(ctx context.Context, id string, shares int64) (*models.HoldingRecord, error) {
	if shares <= 0 {
		return nil, models.NewValidationError("shares", "must be greater than zero")
	}

	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil, models.ErrNotFound
	}

	store := s.storage.HoldingStore()
	if err := store.UpdateShares(ctx, userID, id, shares); err != nil {
		return nil, err
	}

	return store.Get(ctx, userID, id)
}

// SellShares removes shares from a holding. Selling every remaining share
// deletes the record; selling more than held is rejected before any store
// write.
func (s *Service) SellShares(ctx context.Context, id string, shares int64) error {
	if shares <= 0 {
		return models.NewValidationError("shares", "must be greater than zero")
	}

	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return models.ErrNotFound
	}

	store := s.storage.HoldingStore()
	holding, err := store.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if shares > holding.Shares {
		return models.NewValidationError("shares", "cannot sell more than held")
	}

	if shares == holding.Shares {
		s.logger.Info().Str("symbol", holding.Symbol).Msg("Position closed")
		return store.Delete(ctx, userID, id)
	}

	return store.UpdateShares(ctx, userID, id, holding.Shares-shares)
}

// RemoveHolding deletes a holding outright.
func (s *Service) RemoveHolding(ctx context.Context, id string) error {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return models.ErrNotFound
	}
	return s.storage.HoldingStore().Delete(ctx, userID, id)
}

// Totals computes aggregate valuation from the user's holdings and the quote
// cache. The resolver is total: every symbol falls back to the holding's
// store-of-record values, so totals are defined even with zero live data.
func (s *Service) Totals(ctx context.Context) (*models.PortfolioTotals, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return &models.PortfolioTotals{}, nil
	}

	holdings, err := s.storage.HoldingStore().List(ctx, userID)
	if err != nil {
		return nil, err
	}

	hydrated := s.quotes.Hydrate(symbolsOf(holdings))
	record := RecordResolver(holdings)
	resolve := func(symbol string) models.Quote {
		if quote, ok := hydrated[symbol]; ok {
			return quote
		}
		return record(symbol)
	}

	return ComputeTotals(holdings, resolve), nil
}

// RefreshTargets returns the deduplicated symbols across all persisted
// holdings with their change-of-record, for the background refresher.
func (s *Service) RefreshTargets(ctx context.Context) ([]models.RefreshTarget, error) {
	return s.storage.HoldingStore().ListRefreshTargets(ctx)
}

// reconcileAsync propagates a fresher quote into the store without blocking
// the caller. Failures are logged and dropped; the store stays stale until
// the next successful cycle.
func (s *Service) reconcileAsync(userID, id string, price, changePct float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.storage.HoldingStore().ReconcilePrice(ctx, userID, id, price, changePct); err != nil {
			s.logger.Debug().Err(err).Str("id", id).Msg("Price reconciliation dropped")
		}
	}()
}

// IsValidationError reports whether err is a rejected-input error.
func IsValidationError(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
