// internal/server/profile_handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sei-core/internal/profiles"
)

func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	params := profiles.FilterParams{
		Location: r.URL.Query().Get("location"),
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("minScore"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			params.MinScore = &v
		}
	}
	if raw := r.URL.Query().Get("minSample"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			params.MinSample = &v
		}
	}

	list, err := s.profiles.Filter(r.Context(), params)
	if err != nil {
		s.logger.WithError(err).Error("profile listing failed", nil)
		s.respondPublicError(w, http.StatusInternalServerError, "Failed to fetch profiles")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"profiles":  list,
		"count":     len(list),
		"timestamp": nowTimestamp(),
	})
}

func (s *Server) handleProfileDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	profile, err := s.profiles.Detail(r.Context(), slug)
	if err != nil {
		s.logger.WithError(err).Error("profile detail failed", map[string]interface{}{"slug": slug})
		s.respondPublicError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}
	if profile == nil {
		s.respondPublicError(w, http.StatusNotFound, "Profile not found")
		return
	}

	records, err := s.profiles.RecordsForProfile(r.Context(), slug)
	if err != nil {
		s.logger.WithError(err).Error("profile records failed", map[string]interface{}{"slug": slug})
		s.respondPublicError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile":   profile,
		"records":   records,
		"timestamp": nowTimestamp(),
	})
}

func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug   string `json:"slug"`
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondPublicError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if s.revalidateSecret == "" || req.Secret != s.revalidateSecret {
		s.respondPublicError(w, http.StatusUnauthorized, "Invalid secret")
		return
	}

	s.profiles.Invalidate(req.Slug)

	slug := req.Slug
	if slug == "" {
		slug = "all"
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"revalidated": true,
		"timestamp":   nowTimestamp(),
		"slug":        slug,
	})
}
