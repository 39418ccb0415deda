package quotecache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/models"
)

// mockSource is a QuoteSource backed by a fixed symbol map.
type mockSource struct {
	mu      sync.Mutex
	quotes  map[string]models.Quote
	fetches []string
}

func (m *mockSource) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, symbol)
	m.mu.Unlock()

	q, ok := m.quotes[symbol]
	if !ok {
		return nil, models.ErrUpstreamUnavailable
	}
	return &q, nil
}

func (m *mockSource) FetchAll(_ context.Context, symbols []string) ([]*models.Quote, error) {
	var out []*models.Quote
	for _, s := range symbols {
		if q, ok := m.quotes[s]; ok {
			q := q
			out = append(out, &q)
		}
	}
	return out, nil
}

func (m *mockSource) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetches)
}

func newTestCache(now func() time.Time) *Cache {
	c := New(common.NewSilentLogger())
	c.SetClock(now)
	return c
}

func TestGetFresh_WithinWindow(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	current := base
	c := newTestCache(func() time.Time { return current })

	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})

	current = base.Add(500 * time.Millisecond)
	quote, ok := c.GetFresh("AAPL", time.Second)
	if !ok {
		t.Fatal("expected fresh quote at age 500ms with maxAge 1s")
	}
	if quote.Price != 100 || quote.ChangePct != 2.5 {
		t.Errorf("unexpected quote %+v", quote)
	}
}

func TestGetFresh_ExpiredWindow(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	current := base
	c := newTestCache(func() time.Time { return current })

	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})

	current = base.Add(1500 * time.Millisecond)
	if _, ok := c.GetFresh("AAPL", time.Second); ok {
		t.Error("expected absent quote at age 1.5s with maxAge 1s")
	}

	// The stale entry is still retrievable without a freshness bound.
	if _, ok := c.Get("AAPL"); !ok {
		t.Error("stale entry should remain in cache")
	}
}

func TestGetFresh_MissingSymbol(t *testing.T) {
	c := newTestCache(time.Now)
	if _, ok := c.GetFresh("MSFT", time.Hour); ok {
		t.Error("expected absent for never-fetched symbol")
	}
}

func TestPut_CaseInsensitiveSymbol(t *testing.T) {
	c := newTestCache(time.Now)
	c.Put(models.Quote{Symbol: "aapl", Price: 100})

	if _, ok := c.Get("AAPL"); !ok {
		t.Error("lowercase put should be readable via uppercase symbol")
	}
	if _, ok := c.Get("aapl"); !ok {
		t.Error("lookup should be case-insensitive")
	}
}

func TestMergePreservesUnrelatedSymbols(t *testing.T) {
	c := newTestCache(time.Now)
	c.Put(models.Quote{Symbol: "MSFT", Price: 300, ChangePct: -1.2})
	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})

	msft, ok := c.Get("MSFT")
	if !ok {
		t.Fatal("MSFT entry lost by unrelated merge")
	}
	if msft.Quote.Price != 300 || msft.Quote.ChangePct != -1.2 {
		t.Errorf("MSFT entry mutated: %+v", msft.Quote)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestPutPrice_PreservesChangePct(t *testing.T) {
	c := newTestCache(time.Now)
	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})

	c.PutPrice("AAPL", 101, 0)

	entry, ok := c.Get("AAPL")
	if !ok {
		t.Fatal("entry missing after price merge")
	}
	if entry.Quote.Price != 101 {
		t.Errorf("price = %.2f, want 101", entry.Quote.Price)
	}
	if entry.Quote.ChangePct != 2.5 {
		t.Errorf("changePct = %.2f, want 2.5 (carried forward)", entry.Quote.ChangePct)
	}
}

func TestPutPrice_UsesFallbackWhenEmpty(t *testing.T) {
	c := newTestCache(time.Now)

	c.PutPrice("AAPL", 101, 1.8)

	entry, ok := c.Get("AAPL")
	if !ok {
		t.Fatal("entry missing after price merge into empty cache")
	}
	if entry.Quote.ChangePct != 1.8 {
		t.Errorf("changePct = %.2f, want 1.8 (store-of-record fallback)", entry.Quote.ChangePct)
	}
}

func TestIdempotentRefetch(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	current := base
	c := newTestCache(func() time.Time { return current })

	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})
	first, _ := c.Get("AAPL")

	current = base.Add(time.Minute)
	c.Put(models.Quote{Symbol: "AAPL", Price: 100, ChangePct: 2.5})
	second, _ := c.Get("AAPL")

	if second.Quote != first.Quote {
		t.Errorf("observable quote changed on identical refetch: %+v vs %+v", second.Quote, first.Quote)
	}
	if !second.FetchedAt.After(first.FetchedAt) {
		t.Error("fetchedAt should advance on refetch")
	}
}

func TestPreload_PartialFailure(t *testing.T) {
	c := newTestCache(time.Now)
	source := &mockSource{quotes: map[string]models.Quote{
		"A": {Symbol: "A", Price: 10, ChangePct: 1},
		"B": {Symbol: "B", Price: 20, ChangePct: 2},
	}}

	// C is unknown upstream; its failure must not disturb A and B.
	c.Preload(context.Background(), source, []string{"A", "B", "C"})

	if _, ok := c.Get("A"); !ok {
		t.Error("A should be cached")
	}
	if _, ok := c.Get("B"); !ok {
		t.Error("B should be cached")
	}
	if _, ok := c.Get("C"); ok {
		t.Error("C should be absent after failed fetch")
	}
}

func TestPreload_FailureLeavesPriorEntry(t *testing.T) {
	c := newTestCache(time.Now)
	c.Put(models.Quote{Symbol: "C", Price: 5, ChangePct: 0.5})

	source := &mockSource{quotes: map[string]models.Quote{}}
	c.Preload(context.Background(), source, []string{"C"})

	entry, ok := c.Get("C")
	if !ok {
		t.Fatal("failed refresh must never clear a symbol's entry")
	}
	if entry.Quote.Price != 5 {
		t.Errorf("prior entry mutated: %+v", entry.Quote)
	}
}

func TestPreload_DeduplicatesSymbols(t *testing.T) {
	c := newTestCache(time.Now)
	source := &mockSource{quotes: map[string]models.Quote{
		"A": {Symbol: "A", Price: 10},
	}}

	c.Preload(context.Background(), source, []string{"A", "a", " A "})

	if got := source.fetchCount(); got != 1 {
		t.Errorf("expected 1 deduplicated fetch, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	current := base
	c := newTestCache(func() time.Time { return current })

	c.Put(models.Quote{Symbol: "A", Price: 10, ChangePct: 1})
	current = base.Add(45 * time.Minute)
	c.Put(models.Quote{Symbol: "B", Price: 20, ChangePct: 2})

	snap := c.Snapshot([]string{"A", "B", "C"}, 30*time.Minute)
	if len(snap) != 1 {
		t.Fatalf("expected 1 fresh entry, got %d", len(snap))
	}
	if _, ok := snap["B"]; !ok {
		t.Error("B should be in the snapshot")
	}
}
