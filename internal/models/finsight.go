package models

import "time"

// FinsightRecord is a saved stock insight: a snapshot of price and change at
// the moment the user added it. Intentionally never refreshed afterwards.
type FinsightRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
