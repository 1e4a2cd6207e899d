// Package server wires the HTTP surface: public and agent intake, the
// profile catalog, agent search, cache revalidation and the sitemap.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sei-core/internal/common/logger"
	"sei-core/internal/common/observability"
	"sei-core/internal/intake"
	"sei-core/internal/profiles"
	"sei-core/internal/search"
)

type Server struct {
	intake           *intake.Service
	profiles         *profiles.Service
	search           *search.Service
	obs              *observability.Observability
	logger           logger.Logger
	siteBaseURL      string
	revalidateSecret string
}

type Deps struct {
	Intake           *intake.Service
	Profiles         *profiles.Service
	Search           *search.Service
	Observability    *observability.Observability
	Logger           logger.Logger
	SiteBaseURL      string
	RevalidateSecret string
}

func New(deps Deps) *Server {
	return &Server{
		intake:           deps.Intake,
		profiles:         deps.Profiles,
		search:           deps.Search,
		obs:              deps.Observability,
		logger:           deps.Logger,
		siteBaseURL:      deps.SiteBaseURL,
		revalidateSecret: deps.RevalidateSecret,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/sitemap.xml", s.handleSitemap)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote-requests", s.handlePublicQuoteRequest)
		r.Post("/agent/quote-requests", s.handleAgentQuoteRequest)
		r.Get("/profiles", s.handleProfileList)
		r.Get("/profiles/search", s.handleSearch)
		r.Get("/profiles/{slug}", s.handleProfileDetail)
		r.Post("/revalidate", s.handleRevalidate)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
