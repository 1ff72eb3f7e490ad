package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/enquiry"
	"github.com/hamed0406/timetablesvc/internal/venue"
)

func (s *Server) handleEnquiry(w http.ResponseWriter, r *http.Request) {
	var enq domain.ModuleEnquiry
	if err := json.NewDecoder(r.Body).Decode(&enq); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := s.Enquiries.Submit(r.Context(), enq)
	switch {
	case errors.Is(err, enquiry.ErrInvalidEnquiry), errors.Is(err, enquiry.ErrUnknownContact):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.Logger.Error("enquiry_failed", zap.String("module", enq.ModuleCode), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to send enquiry")
		return
	}

	s.Logger.Info("enquiry_sent", zap.String("module", enq.ModuleCode), zap.Stringer("mode", mode))
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleVenue(w http.ResponseWriter, r *http.Request) {
	var c domain.VenueCorrection
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := s.Venues.Submit(r.Context(), c)
	switch {
	case errors.Is(err, venue.ErrInvalidCorrection):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.Logger.Error("venue_failed", zap.String("venue", c.Venue), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to file venue update")
		return
	}

	s.Logger.Info("venue_accepted", zap.String("venue", c.Venue), zap.Bool("filed", f.Filed))
	w.WriteHeader(http.StatusAccepted)
}
