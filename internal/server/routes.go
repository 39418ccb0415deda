package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/finsightapp/finsight/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/me", s.handleAuthMe)

	// Quotes
	mux.HandleFunc("/api/quotes", s.handleQuoteHydrate)
	mux.HandleFunc("/api/quotes/", s.handleQuoteLookup)

	// Portfolio
	mux.HandleFunc("/api/portfolio", s.routePortfolio)
	mux.HandleFunc("/api/portfolio/totals", s.handlePortfolioTotals)
	mux.HandleFunc("/api/portfolio/chart", s.handleAllocationChart)
	mux.HandleFunc("/api/portfolio/", s.routePortfolioItem)

	// Insights
	mux.HandleFunc("/api/finsights", s.routeFinsights)
	mux.HandleFunc("/api/finsights/", s.handleFinsightRemove)

	// Advisor
	mux.HandleFunc("/api/advisor/recommendations", s.routeAdvisor)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(s.app.StartupTime).Round(time.Second).String(),
		"refresher": s.app.Refresher.State().String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"go":      runtime.Version(),
	})
}
