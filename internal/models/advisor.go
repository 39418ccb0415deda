package models

import "time"

// RiskProfile captures the quiz answers used to generate recommendations.
type RiskProfile struct {
	UserID        string    `json:"user_id"`
	RiskTolerance string    `json:"risk_tolerance"` // conservative, balanced, aggressive
	HorizonYears  int       `json:"horizon_years"`
	MonthlyBudget float64   `json:"monthly_budget"`
	Interests     []string  `json:"interests,omitempty"` // sectors/themes the user picked
	UpdatedAt     time.Time `json:"updated_at"`
}

// Recommendation is a single AI-suggested stock for a profile.
type Recommendation struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Reason      string  `json:"reason"`
}

// RecommendationSet is the cached result of one quiz completion. It is
// regenerated only when the user explicitly resets the quiz.
type RecommendationSet struct {
	UserID      string           `json:"user_id"`
	Profile     RiskProfile      `json:"profile"`
	Items       []Recommendation `json:"items"`
	GeneratedAt time.Time        `json:"generated_at"`
}
