package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/models"
)

// mockQuotes records refresh cycle invocations.
type mockQuotes struct {
	mu         sync.Mutex
	dailyCalls int
	rtCalls    int
	rtCtxs     []context.Context
	dailyCh    chan struct{}
	rtCh       chan struct{}
}

func newMockQuotes() *mockQuotes {
	return &mockQuotes{
		dailyCh: make(chan struct{}, 16),
		rtCh:    make(chan struct{}, 16),
	}
}

func (m *mockQuotes) Hydrate([]string) map[string]models.Quote { return nil }

func (m *mockQuotes) Lookup(context.Context, string) (*models.Quote, error) {
	return nil, models.ErrNotFound
}

func (m *mockQuotes) RefreshDaily(_ context.Context, _ []string) {
	m.mu.Lock()
	m.dailyCalls++
	m.mu.Unlock()
	m.dailyCh <- struct{}{}
}

func (m *mockQuotes) RefreshRealtime(ctx context.Context, _ []models.RefreshTarget) {
	m.mu.Lock()
	m.rtCalls++
	m.rtCtxs = append(m.rtCtxs, ctx)
	m.mu.Unlock()
	m.rtCh <- struct{}{}
}

func (m *mockQuotes) realtimeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rtCalls
}

// mockPortfolio serves a fixed target list; only RefreshTargets matters here.
type mockPortfolio struct {
	targets []models.RefreshTarget
	err     error
}

func (m *mockPortfolio) ListHoldings(context.Context) ([]*models.HoldingView, error) {
	return nil, nil
}

func (m *mockPortfolio) AddHolding(context.Context, string, string, int64) (*models.HoldingRecord, error) {
	return nil, nil
}

func (m *mockPortfolio) UpdateShares(context.Context, string, int64) (*models.HoldingRecord, error) {
	return nil, nil
}

func (m *mockPortfolio) SellShares(context.Context, string, int64) error { return nil }
func (m *mockPortfolio) RemoveHolding(context.Context, string) error     { return nil }

func (m *mockPortfolio) Totals(context.Context) (*models.PortfolioTotals, error) {
	return &models.PortfolioTotals{}, nil
}

func (m *mockPortfolio) RefreshTargets(context.Context) ([]models.RefreshTarget, error) {
	return m.targets, m.err
}

func waitFor(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func newTestRefresher(quotes *mockQuotes, portfolio *mockPortfolio) *Refresher {
	return NewRefresher(quotes, portfolio, common.NewSilentLogger(), 10*time.Millisecond, time.Hour)
}

func TestStart_HydratesThenGoesLive(t *testing.T) {
	quotes := newMockQuotes()
	portfolio := &mockPortfolio{targets: []models.RefreshTarget{{Symbol: "AAPL", ChangePct: 1}}}
	r := newTestRefresher(quotes, portfolio)
	defer r.Stop()

	r.Start(context.Background())

	// The hydrate paint is one immediate daily cycle.
	waitFor(t, quotes.dailyCh, "hydrate daily cycle")
	// Then the realtime ticker takes over.
	waitFor(t, quotes.rtCh, "first realtime tick")

	if state := r.State(); state != StateLive {
		t.Errorf("state = %v, want live", state)
	}
}

func TestStart_IsIdempotentWhileRunning(t *testing.T) {
	quotes := newMockQuotes()
	portfolio := &mockPortfolio{targets: []models.RefreshTarget{{Symbol: "AAPL"}}}
	r := newTestRefresher(quotes, portfolio)
	defer r.Stop()

	r.Start(context.Background())
	r.Start(context.Background())

	waitFor(t, quotes.dailyCh, "hydrate daily cycle")

	// A second Start must not have spawned a second loop.
	select {
	case <-quotes.dailyCh:
		t.Error("second hydrate cycle observed; Start should be a no-op while running")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStop_WindsDownAndCancelsCycleContext(t *testing.T) {
	quotes := newMockQuotes()
	portfolio := &mockPortfolio{targets: []models.RefreshTarget{{Symbol: "AAPL"}}}
	r := newTestRefresher(quotes, portfolio)

	r.Start(context.Background())
	waitFor(t, quotes.rtCh, "first realtime tick")

	r.Stop()

	if state := r.State(); state != StateIdle {
		t.Errorf("state after Stop = %v, want idle", state)
	}

	quotes.mu.Lock()
	ctxs := append([]context.Context(nil), quotes.rtCtxs...)
	quotes.mu.Unlock()
	for _, ctx := range ctxs {
		if ctx.Err() == nil {
			t.Error("cycle context should be cancelled after Stop")
		}
	}

	// No ticks after Stop.
	calls := quotes.realtimeCalls()
	time.Sleep(50 * time.Millisecond)
	if quotes.realtimeCalls() != calls {
		t.Error("realtime cycles continued after Stop")
	}
}

func TestStop_ConcurrentCallersAllWaitForWindDown(t *testing.T) {
	quotes := newMockQuotes()
	portfolio := &mockPortfolio{targets: []models.RefreshTarget{{Symbol: "AAPL"}}}
	r := newTestRefresher(quotes, portfolio)

	r.Start(context.Background())
	waitFor(t, quotes.dailyCh, "hydrate daily cycle")

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop()
			// Every caller must observe the loop fully wound down.
			if state := r.State(); state != StateIdle {
				t.Errorf("state after Stop = %v, want idle", state)
			}
		}()
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()
	waitFor(t, stopped, "all Stop callers to return")
}

func TestStop_BeforeStartIsNoop(t *testing.T) {
	r := newTestRefresher(newMockQuotes(), &mockPortfolio{})
	r.Stop()

	if state := r.State(); state != StateIdle {
		t.Errorf("state = %v, want idle", state)
	}
}

func TestRestartAfterStop(t *testing.T) {
	quotes := newMockQuotes()
	portfolio := &mockPortfolio{targets: []models.RefreshTarget{{Symbol: "AAPL"}}}
	r := newTestRefresher(quotes, portfolio)

	r.Start(context.Background())
	waitFor(t, quotes.dailyCh, "first hydrate cycle")
	r.Stop()

	r.Start(context.Background())
	defer r.Stop()
	waitFor(t, quotes.dailyCh, "hydrate cycle after restart")
}

func TestEmptyPortfolioSkipsCycles(t *testing.T) {
	quotes := newMockQuotes()
	r := newTestRefresher(quotes, &mockPortfolio{})
	defer r.Stop()

	r.Start(context.Background())

	select {
	case <-quotes.rtCh:
		t.Error("realtime cycle ran with no targets")
	case <-time.After(60 * time.Millisecond):
	}
}
