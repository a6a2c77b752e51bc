package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/mealcam/internal/domain"
)

type credentialRequest struct {
	Value string `json:"value"`
}

type credentialStatus struct {
	Configured bool `json:"configured"`
}

// handleGetCredential reports whether a credential is set; the value itself is
// never returned.
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	ok, err := s.service.HasCredential(r.Context())
	if err != nil {
		s.writeError(w, "read credential", err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatus{Configured: ok}, s.logger)
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMealBodySize)).Decode(&req); err != nil {
		s.writeError(w, "set credential", &domain.ValidationError{Field: "body", Msg: err.Error()})
		return
	}
	if err := s.service.SetCredential(r.Context(), req.Value); err != nil {
		s.writeError(w, "set credential", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearCredential(r.Context()); err != nil {
		s.writeError(w, "clear credential", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
