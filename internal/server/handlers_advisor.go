package server

import (
	"net/http"

	"github.com/finsightapp/finsight/internal/models"
)

// routeAdvisor handles /api/advisor/recommendations (GET cached, POST quiz
// submission, DELETE reset).
func (s *Server) routeAdvisor(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAdvisorGet(w, r)
	case http.MethodPost:
		s.handleAdvisorGenerate(w, r)
	case http.MethodDelete:
		s.handleAdvisorReset(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// handleAdvisorGet returns the cached recommendation set.
func (s *Server) handleAdvisorGet(w http.ResponseWriter, r *http.Request) {
	set, err := s.app.AdvisorService.Get(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, set)
}

// handleAdvisorGenerate runs the quiz flow.
func (s *Server) handleAdvisorGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RiskTolerance string   `json:"risk_tolerance"`
		HorizonYears  int      `json:"horizon_years"`
		MonthlyBudget float64  `json:"monthly_budget"`
		Interests     []string `json:"interests"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile := &models.RiskProfile{
		RiskTolerance: req.RiskTolerance,
		HorizonYears:  req.HorizonYears,
		MonthlyBudget: req.MonthlyBudget,
		Interests:     req.Interests,
	}

	set, err := s.app.AdvisorService.Generate(r.Context(), profile)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, set)
}

// handleAdvisorReset discards the cached set.
func (s *Server) handleAdvisorReset(w http.ResponseWriter, r *http.Request) {
	if err := s.app.AdvisorService.Reset(r.Context()); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
