package server

import (
	"net/http"
)

// routeFinsights handles /api/finsights (GET list, POST add).
func (s *Server) routeFinsights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFinsightList(w, r)
	case http.MethodPost:
		s.handleFinsightAdd(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleFinsightList handles GET /api/finsights.
func (s *Server) handleFinsightList(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.FinsightService.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"finsights": records,
		"count":     len(records),
	})
}

// handleFinsightAdd handles POST /api/finsights.
func (s *Server) handleFinsightAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Reason string `json:"reason"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	record, err := s.app.FinsightService.Add(r.Context(), req.Symbol, req.Name, req.Reason)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

// handleFinsightRemove handles DELETE /api/finsights/{id}.
func (s *Server) handleFinsightRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := pathSuffix(r, "/api/finsights/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "insight id is required")
		return
	}

	if err := s.app.FinsightService.Remove(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
