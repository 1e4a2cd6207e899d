// internal/server/search_handlers.go
package server

import (
	"net/http"
	"strconv"
	"strings"

	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondAgentError(w, stderrors.NewValidationMessageError("query parameter is required", nil))
		return
	}

	location := r.URL.Query().Get("location")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	limit = search.ClampLimit(limit)

	results, err := s.search.Search(r.Context(), query, location, limit)
	if err != nil {
		s.logger.WithError(err).Error("search failed", map[string]interface{}{"query": query})
		serr := stderrors.NewInternalError(nil)
		serr.Message = "Search failed"
		s.respondAgentError(w, serr)
		return
	}

	var locationField interface{}
	if location != "" {
		locationField = location
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"query":    query,
		"location": locationField,
		"results":  results,
	})
}
