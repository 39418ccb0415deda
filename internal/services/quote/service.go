// Package quote implements the quote service: it owns the shared cache and
// the merge policy across the daily and realtime sources.
package quote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/quotecache"
)

// Service implements QuoteService over a daily (full-quote) source and a
// realtime (price-only) source sharing one cache.
type Service struct {
	cache         *quotecache.Cache
	daily         interfaces.QuoteSource
	realtime      interfaces.QuoteSource
	logger        *common.Logger
	hydrateWindow time.Duration
}

// NewService creates a new quote service.
// realtime may be nil; the fine refresh cycle then falls back to the daily
// source for prices.
func NewService(cache *quotecache.Cache, daily, realtime interfaces.QuoteSource, logger *common.Logger) *Service {
	return &Service{
		cache:         cache,
		daily:         daily,
		realtime:      realtime,
		logger:        logger,
		hydrateWindow: common.FreshnessHydrate,
	}
}

// SetHydrateWindow overrides the default hydrate freshness window with the
// configured one. Non-positive values are ignored.
func (s *Service) SetHydrateWindow(window time.Duration) {
	if window > 0 {
		s.hydrateWindow = window
	}
}

// Hydrate returns the cached quotes no older than the hydrate window for the
// given symbols. Pure cache read: absent symbols mean the caller should fall
// back to its store-of-record prices.
func (s *Service) Hydrate(symbols []string) map[string]models.Quote {
	return s.cache.Snapshot(symbols, s.hydrateWindow)
}

// Lookup returns a quote for a symbol, serving from cache when fresh and
// fetching from the daily source otherwise. The fetched quote is merged into
// the cache so subsequent readers see it.
func (s *Service) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	key := models.NormalizeSymbol(symbol)
	if key == "" {
		return nil, errors.New("symbol is required")
	}

	if quote, ok := s.cache.GetFresh(key, common.FreshnessDaily); ok {
		return &quote, nil
	}

	quote, err := s.daily.FetchQuote(ctx, key)
	if err != nil {
		// A stale cached quote still beats an upstream outage; unknown
		// symbols propagate so callers can refuse them.
		if !errors.Is(err, models.ErrNotFound) {
			if entry, ok := s.cache.Get(key); ok {
				s.logger.Warn().Err(err).Str("symbol", key).Msg("Serving stale quote, daily source unavailable")
				stale := entry.Quote
				return &stale, nil
			}
		}
		return nil, err
	}

	s.cache.Put(*quote)
	return quote, nil
}

// RefreshDaily runs one coarse refresh cycle: a bulk daily fetch merged first,
// then individual fallback fetches for symbols the bulk result missed.
// Per-symbol failures are logged and swallowed; prior cache entries for failed
// symbols are left untouched.
func (s *Service) RefreshDaily(ctx context.Context, symbols []string) {
	deduped := dedupe(symbols)
	if len(deduped) == 0 {
		return
	}

	covered := make(map[string]struct{}, len(deduped))

	quotes, err := s.daily.FetchAll(ctx, deduped)
	if err != nil {
		s.logger.Warn().Err(err).Int("symbols", len(deduped)).Msg("Bulk daily refresh failed, falling back per symbol")
	}
	if ctx.Err() != nil {
		return
	}
	for _, quote := range quotes {
		s.cache.Put(*quote)
		covered[quote.Symbol] = struct{}{}
	}

	var missed []string
	for _, symbol := range deduped {
		if _, ok := covered[symbol]; !ok {
			missed = append(missed, symbol)
		}
	}
	if len(missed) == 0 {
		s.logger.Debug().Int("symbols", len(deduped)).Msg("Daily refresh complete")
		return
	}

	s.cache.Preload(ctx, s.daily, missed)
	s.logger.Debug().
		Int("symbols", len(deduped)).
		Int("fallback", len(missed)).
		Msg("Daily refresh complete")
}

// RefreshRealtime runs one fine refresh cycle: per-symbol realtime price
// fetches merged under the preserve-changePercent rule. Each target's
// change-of-record seeds the entry only when nothing is cached for the symbol.
func (s *Service) RefreshRealtime(ctx context.Context, targets []models.RefreshTarget) {
	source := s.realtime
	if source == nil {
		source = s.daily
	}

	seen := make(map[string]struct{}, len(targets))
	var wg sync.WaitGroup

	for _, target := range targets {
		key := models.NormalizeSymbol(target.Symbol)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		go func(sym string, fallbackChangePct float64) {
			defer wg.Done()
			quote, err := source.FetchQuote(ctx, sym)
			if err != nil {
				s.logger.Debug().Err(err).Str("symbol", sym).Msg("Realtime refresh skipped")
				return
			}
			// Liveness guard: a fetch resolving after the cycle was cancelled
			// must not mutate the cache.
			if ctx.Err() != nil {
				return
			}
			s.cache.PutPrice(sym, quote.Price, fallbackChangePct)
		}(key, target.ChangePct)
	}

	wg.Wait()
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		key := models.NormalizeSymbol(symbol)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
