// Package refresh runs the background quote refresh loop: an initial
// hydrate-and-paint window followed by steady-state periodic cycles.
//
// Two cycles run on independent tickers. The fine (realtime) cycle fetches a
// price per held symbol every few tens of seconds. The coarse (daily) cycle
// re-fetches full quotes, restoring the authoritative changePercent, on the
// order of minutes.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
)

// State is the refresher lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateHydrating
	StateLive
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateLive:
		return "live"
	default:
		return "idle"
	}
}

// Refresher drives the periodic quote refresh cycles. Start and Stop are safe
// to call from any goroutine; a stopped refresher can be started again.
type Refresher struct {
	quotes    interfaces.QuoteService
	portfolio interfaces.PortfolioService
	logger    *common.Logger

	realtimeInterval time.Duration
	dailyInterval    time.Duration

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a refresher over the quote and portfolio services.
func NewRefresher(quotes interfaces.QuoteService, portfolio interfaces.PortfolioService, logger *common.Logger, realtimeInterval, dailyInterval time.Duration) *Refresher {
	return &Refresher{
		quotes:           quotes,
		portfolio:        portfolio,
		logger:           logger,
		realtimeInterval: realtimeInterval,
		dailyInterval:    dailyInterval,
		state:            StateIdle,
	}
}

// State returns the current lifecycle state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins the refresh loop: one immediate daily cycle (the hydrate
// paint), then steady-state ticking. No-op when already running.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = StateHydrating
	r.mu.Unlock()

	go r.run(ctx)
}

// Stop cancels the loop and blocks until it has wound down. In-flight fetches
// resolve but their results are discarded by the cancellation guard. Safe for
// concurrent callers: every Stop waits for the wind-down, not just the one
// that performed the cancellation.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *Refresher) run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.state = StateIdle
		done := r.done
		r.mu.Unlock()
		close(done)
	}()

	r.logger.Info().
		Dur("realtime", r.realtimeInterval).
		Dur("daily", r.dailyInterval).
		Msg("Refresher: starting")

	// Hydrate: one coarse cycle up front so views paint with data no older
	// than the daily window.
	r.runDailyCycle(ctx)

	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	r.state = StateLive
	r.mu.Unlock()

	realtime := time.NewTicker(r.realtimeInterval)
	defer realtime.Stop()
	daily := time.NewTicker(r.dailyInterval)
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Refresher: stopped")
			return
		case <-realtime.C:
			r.runRealtimeCycle(ctx)
		case <-daily.C:
			r.runDailyCycle(ctx)
		}
	}
}

// runDailyCycle fetches full quotes for every held symbol: one bulk request
// merged first, then per-symbol fallbacks inside the quote service.
func (r *Refresher) runDailyCycle(ctx context.Context) {
	start := time.Now()

	targets, err := r.portfolio.RefreshTargets(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Daily cycle: refresh targets unavailable")
		return
	}
	if len(targets) == 0 {
		return
	}

	symbols := make([]string, 0, len(targets))
	for _, target := range targets {
		symbols = append(symbols, target.Symbol)
	}

	r.quotes.RefreshDaily(ctx, symbols)

	r.logger.Debug().
		Int("symbols", len(symbols)).
		Dur("elapsed", time.Since(start)).
		Msg("Daily cycle: complete")
}

// runRealtimeCycle fans out one price fetch per held symbol. Failures are
// logged inside the quote service and retried wholesale on the next tick; no
// backoff, the volume is tens of symbols.
func (r *Refresher) runRealtimeCycle(ctx context.Context) {
	targets, err := r.portfolio.RefreshTargets(ctx)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Realtime cycle: refresh targets unavailable")
		return
	}
	if len(targets) == 0 {
		return
	}

	r.quotes.RefreshRealtime(ctx, targets)
}
