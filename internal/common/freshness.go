// Package common provides shared utilities for Finsight
package common

import "time"

// Freshness windows for quote data. A cached quote inside the window is used
// as-is; outside it the caller refetches or falls back to the store-of-record.
const (
	// FreshnessHydrate bounds the cache-first paint on view mount: anything
	// fetched this session is almost always usable for an instant first render.
	FreshnessHydrate = 30 * time.Minute

	// FreshnessRealtime matches the fine refresh cycle; a quote older than two
	// ticks is treated as stale by display-layer callers.
	FreshnessRealtime = 60 * time.Second

	// FreshnessDaily bounds how long a daily quote's changePercent is trusted
	// without a new coarse-cycle fetch.
	FreshnessDaily = 1 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
