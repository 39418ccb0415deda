// Package quotecache provides the shared in-memory quote cache: a mapping
// from symbol to the last successfully fetched quote and its fetch time.
//
// The cache is intentionally unbounded and session-scoped. The symbol universe
// one deployment touches is small (tens of symbols), so there is no eviction;
// entries are only ever overwritten, never removed.
package quotecache

import (
	"context"
	"sync"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

// Cache is a concurrency-safe symbol-to-quote map with freshness-aware reads.
// Writers merge entry by entry, so concurrent writers touching disjoint
// symbols never lose each other's data; same-symbol writers race
// last-write-wins, which is acceptable for quote data.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.CachedQuote
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// New creates an empty cache.
func New(logger *common.Logger) *Cache {
	return &Cache{
		entries: make(map[string]models.CachedQuote),
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the cache's clock. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached entry for a symbol regardless of age.
func (c *Cache) Get(symbol string) (models.CachedQuote, bool) {
	key := models.NormalizeSymbol(symbol)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// GetFresh returns the cached quote for a symbol only when it is no older
// than maxAge. An older or missing entry is treated as absent; the caller
// refetches or falls back to the store-of-record.
func (c *Cache) GetFresh(symbol string, maxAge time.Duration) (models.Quote, bool) {
	entry, ok := c.Get(symbol)
	if !ok {
		return models.Quote{}, false
	}
	if entry.Age(c.now()) > maxAge {
		return models.Quote{}, false
	}
	return entry.Quote, true
}

// Put upserts a full quote, stamping FetchedAt with the current time.
// Last writer for a symbol wins.
func (c *Cache) Put(quote models.Quote) {
	key := models.NormalizeSymbol(quote.Symbol)
	if key == "" {
		return
	}
	quote.Symbol = key

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = models.CachedQuote{Quote: quote, FetchedAt: c.now()}
}

// PutPrice merges a price-only (realtime) result. The cached ChangePct is
// carried forward when an entry exists; otherwise fallbackChangePct (the
// holding's change-of-record) seeds the new entry. ChangePct is never reset
// by a realtime merge.
func (c *Cache) PutPrice(symbol string, price, fallbackChangePct float64) {
	key := models.NormalizeSymbol(symbol)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	changePct := fallbackChangePct
	if prev, ok := c.entries[key]; ok {
		changePct = prev.Quote.ChangePct
	}

	c.entries[key] = models.CachedQuote{
		Quote:     models.Quote{Symbol: key, Price: price, ChangePct: changePct},
		FetchedAt: c.now(),
	}
}

// Snapshot returns the cached quotes for the given symbols that are no older
// than maxAge. Symbols without a usable entry are absent from the result.
func (c *Cache) Snapshot(symbols []string, maxAge time.Duration) map[string]models.Quote {
	result := make(map[string]models.Quote, len(symbols))
	for _, symbol := range symbols {
		if quote, ok := c.GetFresh(symbol, maxAge); ok {
			result[quote.Symbol] = quote
		}
	}
	return result
}

// Len returns the number of cached symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Preload fetches quotes for a set of symbols from the given source and
// merges every success. Symbols are deduplicated; per-symbol failures are
// logged and swallowed, leaving any prior entry untouched. Returns when all
// fetches have been attempted.
func (c *Cache) Preload(ctx context.Context, source interfaces.QuoteSource, symbols []string) {
	seen := make(map[string]struct{}, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		key := models.NormalizeSymbol(symbol)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			quote, err := source.FetchQuote(ctx, sym)
			if err != nil {
				c.logger.Debug().Err(err).Str("symbol", sym).Msg("Preload fetch failed")
				return
			}
			// A fetch resolving after cancellation must not mutate the cache.
			if ctx.Err() != nil {
				return
			}
			c.Put(*quote)
		}(key)
	}

	wg.Wait()
}
