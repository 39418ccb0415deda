package server

import (
	"net/http"

	"github.com/finsightapp/finsight/internal/services/portfolio"
)

// handleAllocationChart handles GET /api/portfolio/chart: a PNG donut of the
// portfolio's allocation by market value.
func (s *Server) handleAllocationChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.PortfolioService.ListHoldings(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if len(holdings) == 0 {
		WriteError(w, http.StatusNotFound, "no holdings to chart")
		return
	}

	png, err := portfolio.RenderAllocationChart(holdings)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Allocation chart render failed")
		WriteError(w, http.StatusInternalServerError, "chart render failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
