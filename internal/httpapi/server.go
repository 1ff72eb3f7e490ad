package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/enquiry"
	"github.com/hamed0406/timetablesvc/internal/httpapi/middleware"
	"github.com/hamed0406/timetablesvc/internal/probe"
	"github.com/hamed0406/timetablesvc/internal/shortener"
	"github.com/hamed0406/timetablesvc/internal/venue"
)

// maxBody caps every request body.
const maxBody = 1 << 20

type StatusRunner interface {
	Run(ctx context.Context, defs []probe.Definition) probe.Report
}

type Shortener interface {
	Allocate(ctx context.Context, longURL string) (shortener.Allocation, error)
	Resolve(ctx context.Context, code string) (string, error)
}

type EnquirySubmitter interface {
	Submit(ctx context.Context, enq domain.ModuleEnquiry) (enquiry.DeliveryMode, error)
}

type VenueSubmitter interface {
	Submit(ctx context.Context, c domain.VenueCorrection) (venue.Filing, error)
}

// Metrics is the slice of the metrics package the router needs.
type Metrics interface {
	middleware.RequestObserver
	Handler() http.Handler
}

type Options struct {
	StatusTitle  string
	ShortURLBase string
	RedirectBase string
}

type Server struct {
	Logger    *zap.Logger
	Status    StatusRunner
	Probes    []probe.Definition
	Shortener Shortener
	Enquiries EnquirySubmitter
	Venues    VenueSubmitter
	Metrics   Metrics // optional
	Opts      Options
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	var obs middleware.RequestObserver
	if s.Metrics != nil {
		obs = s.Metrics
	}
	r.Use(middleware.RequestLog(s.Logger, obs))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBody))
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/status", func(r chi.Router) {
		r.Use(middleware.CORS(http.MethodGet))
		r.MethodNotAllowed(methodNotAllowed)
		r.Get("/", s.handleStatus)
		r.Options("/", noContent)
	})
	r.Route("/short", func(r chi.Router) {
		r.Use(middleware.CORS(http.MethodGet, http.MethodPut))
		r.MethodNotAllowed(methodNotAllowed)
		r.Get("/", s.handleResolve)
		r.Put("/", s.handleAllocate)
		r.Options("/", noContent)
	})
	r.Route("/module-error", func(r chi.Router) {
		r.Use(middleware.CORS(http.MethodPost))
		r.MethodNotAllowed(methodNotAllowed)
		r.Post("/", s.handleEnquiry)
		r.Options("/", noContent)
	})
	r.Route("/venue", func(r chi.Router) {
		r.Use(middleware.CORS(http.MethodPost))
		r.MethodNotAllowed(methodNotAllowed)
		r.Post("/", s.handleVenue)
		r.Options("/", noContent)
	})

	return r
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
