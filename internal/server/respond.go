// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"

	stderrors "sei-core/internal/common/errors"
)

// agentErrorEnvelope is the machine-facing error shape:
// { ok: false, error: { code, message, fields? } }.
type agentErrorEnvelope struct {
	Ok    bool            `json:"ok"`
	Error agentErrorBlock `json:"error"`
}

type agentErrorBlock struct {
	Code    stderrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Fields  []string            `json:"fields,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}

// respondAgentError writes the agent envelope with the status mapped from
// the error code.
func (s *Server) respondAgentError(w http.ResponseWriter, serr *stderrors.StandardError) {
	s.respondJSON(w, stderrors.HTTPStatus(serr.Code), agentErrorEnvelope{
		Ok: false,
		Error: agentErrorBlock{
			Code:    serr.Code,
			Message: serr.Message,
			Fields:  serr.Fields,
		},
	})
}

// respondPublicError writes the form-facing flat error shape.
func (s *Server) respondPublicError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
