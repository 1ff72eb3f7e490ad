package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// handleStatus runs every probe and answers 200 only when all are healthy.
// ?format=text renders the plain-text table instead of JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := s.Status.Run(r.Context(), s.Probes)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(report.StatusCode())
		if err := report.WriteText(w, s.Opts.StatusTitle); err != nil {
			s.Logger.Warn("status_write_failed", zap.Error(err))
		}
		return
	}
	writeJSON(w, report.StatusCode(), report)
}
