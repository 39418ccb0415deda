package models

import "time"

// HoldingRecord is a portfolio position as persisted in the store.
// CurrentPrice and ChangePct are the store-of-record values: the last prices
// written back by reconciliation, used as the valuation fallback when no live
// quote is available.
type HoldingRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Shares       int64     `json:"shares"`
	CurrentPrice float64   `json:"current_price"`
	ChangePct    float64   `json:"change_pct"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PortfolioTotals holds aggregate valuation figures derived from holdings and
// the freshest available quotes.
type PortfolioTotals struct {
	TotalValue         float64 `json:"total_value"`
	TotalChangeDollars float64 `json:"total_change_dollars"`
	TotalChangePct     float64 `json:"total_change_pct"`
	HoldingCount       int     `json:"holding_count"`
}

// HoldingView is a holding decorated with its effective quote for display.
type HoldingView struct {
	HoldingRecord
	EffectivePrice     float64 `json:"effective_price"`
	EffectiveChangePct float64 `json:"effective_change_pct"`
	MarketValue        float64 `json:"market_value"`
	Live               bool    `json:"live"` // true when priced from the quote cache
}
