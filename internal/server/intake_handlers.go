// internal/server/intake_handlers.go
package server

import (
	"io"
	"net"
	"net/http"

	stderrors "sei-core/internal/common/errors"
)

const maxBodyBytes = 1 << 20

// handlePublicQuoteRequest hands the raw body to the service unparsed, like
// the agent path: the address quota must be charged before any decoding.
func (s *Server) handlePublicQuoteRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondPublicError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if verr := s.intake.SubmitPublic(r.Context(), clientAddr(r), body); verr != nil {
		s.respondPublicError(w, stderrors.HTTPStatus(verr.Code), verr.Message)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Quote request submitted successfully",
		"timestamp": nowTimestamp(),
	})
}

func (s *Server) handleAgentQuoteRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondAgentError(w, stderrors.NewValidationMessageError("Request body must be a JSON object", []string{"body"}))
		return
	}

	result, verr := s.intake.SubmitAgent(r.Context(), r.Header.Get("Authorization"), body)
	if verr != nil {
		s.respondAgentError(w, verr)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// clientAddr is the rate-limit identity of a public caller. The RealIP
// middleware has already folded X-Forwarded-For into RemoteAddr.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
