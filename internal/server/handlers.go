package server

import (
	"net/http"
	"strings"
)

// handleQuoteHydrate handles GET /api/quotes?symbols=AAPL,MSFT: the cache-only
// bulk snapshot the mobile client paints from on view mount. Symbols without a
// quote inside the hydrate window are absent from the result; the client falls
// back to its store-of-record prices for those.
func (s *Server) handleQuoteHydrate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	raw := r.URL.Query().Get("symbols")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	quotes := s.app.QuoteService.Hydrate(strings.Split(raw, ","))
	WriteJSON(w, http.StatusOK, map[string]any{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// handleQuoteLookup handles GET /api/quotes/{symbol}.
func (s *Server) handleQuoteLookup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := pathSuffix(r, "/api/quotes/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, err := s.app.QuoteService.Lookup(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, quote)
}

// routePortfolio handles /api/portfolio (GET list, POST add).
func (s *Server) routePortfolio(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioList(w, r)
	case http.MethodPost:
		s.handleHoldingAdd(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolioList handles GET /api/portfolio.
func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	holdings, err := s.app.PortfolioService.ListHoldings(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"holdings": holdings,
		"count":    len(holdings),
	})
}

// handleHoldingAdd handles POST /api/portfolio.
func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Shares int64  `json:"shares"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.PortfolioService.AddHolding(r.Context(), req.Symbol, req.Name, req.Shares)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, holding)
}

// routePortfolioItem handles /api/portfolio/{id} (PATCH shares, POST sell,
// DELETE remove).
func (s *Server) routePortfolioItem(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r, "/api/portfolio/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "holding id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.handleHoldingUpdate(w, r, id)
	case http.MethodPost:
		s.handleHoldingSell(w, r, id)
	case http.MethodDelete:
		s.handleHoldingRemove(w, r, id)
	default:
		RequireMethod(w, r, http.MethodPatch, http.MethodPost, http.MethodDelete)
	}
}

// handleHoldingUpdate handles PATCH /api/portfolio/{id}.
func (s *Server) handleHoldingUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Shares int64 `json:"shares"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	holding, err := s.app.PortfolioService.UpdateShares(r.Context(), id, req.Shares)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, holding)
}

// handleHoldingSell handles POST /api/portfolio/{id} with a sell payload.
func (s *Server) handleHoldingSell(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Sell int64 `json:"sell"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.PortfolioService.SellShares(r.Context(), id, req.Sell); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "sold"})
}

// handleHoldingRemove handles DELETE /api/portfolio/{id}.
func (s *Server) handleHoldingRemove(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.app.PortfolioService.RemoveHolding(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// handlePortfolioTotals handles GET /api/portfolio/totals.
func (s *Server) handlePortfolioTotals(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	totals, err := s.app.PortfolioService.Totals(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, totals)
}
