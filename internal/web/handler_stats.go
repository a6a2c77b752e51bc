package web

import (
	"mime"
	"net/http"

	"github.com/vbonduro/mealcam/internal/report"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	day, err := s.dayParam(r)
	if err != nil {
		s.writeError(w, "daily stats", err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.DailyStats(r.Context(), day), s.logger)
}

// handleReport serves the day's text report as a download.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	day, err := s.dayParam(r)
	if err != nil {
		s.writeError(w, "report", err)
		return
	}

	filename, body := s.service.Report(r.Context(), day)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if _, err := w.Write([]byte(report.BOM + body)); err != nil {
		s.logger.Error("write report failed", "error", err)
	}
}
