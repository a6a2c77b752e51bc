package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		verr *domain.ValidationError
		rerr *domain.RecognitionError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAnalysisInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal failures are logged and
// replaced with a generic message.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
		msg = op + " failed"
	}
	writeJSON(w, status, errorResponse{Error: msg}, s.logger)
}

// dayParam reads the optional ?date=YYYY-MM-DD query parameter.
func (s *Server) dayParam(r *http.Request) (time.Time, error) {
	return ledger.ParseDay(r.URL.Query().Get("date"), s.service.Location(), s.service.Today())
}
