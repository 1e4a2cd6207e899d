// internal/server/middleware.go
package server

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	stderrors "sei-core/internal/common/errors"
	"sei-core/internal/common/metrics"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		elapsed := time.Since(start)

		metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		if s.obs != nil {
			s.obs.RecordRequest(r.Context(), route, strconv.Itoa(ww.Status()))
			s.obs.RecordRequestDuration(r.Context(), elapsed, route)
		}

		s.logger.Info("request handled", map[string]interface{}{
			"method":      r.Method,
			"route":       route,
			"status":      ww.Status(),
			"duration_ms": elapsed.Milliseconds(),
			"request_id":  ww.Header().Get(requestIDHeader),
		})
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", map[string]interface{}{
					"panic": rec,
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				})
				s.respondAgentError(w, stderrors.NewInternalError(nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
