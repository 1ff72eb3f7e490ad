package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/shortener"
)

type allocatePayload struct {
	LongURL *string `json:"longUrl"`
}

type allocateResponse struct {
	ShortURL string `json:"shortUrl"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("shortUrl") {
		writeError(w, http.StatusBadRequest, "Missing shortUrl parameter")
		return
	}

	longURL, err := s.Shortener.Resolve(r.Context(), q.Get("shortUrl"))
	switch {
	case errors.Is(err, shortener.ErrNotFound):
		writeError(w, http.StatusNotFound, "Long URL not found")
		return
	case err != nil:
		s.Logger.Error("short_resolve_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.Redirect(w, r, redirectTarget(s.Opts.RedirectBase, longURL), http.StatusFound)
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var p allocatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.LongURL == nil {
		writeError(w, http.StatusBadRequest, "Long URL not found in request body")
		return
	}

	alloc, err := s.Shortener.Allocate(r.Context(), *p.LongURL)
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "Long URL not found in request body")
		return
	case errors.Is(err, shortener.ErrExhausted):
		s.Logger.Error("short_allocate_exhausted", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate short URL")
		return
	case err != nil:
		s.Logger.Error("short_allocate_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body := allocateResponse{ShortURL: shortURL(s.Opts.ShortURLBase, alloc.Code)}
	if !alloc.Created {
		writeJSON(w, http.StatusOK, body)
		return
	}
	w.Header().Set("Cache-Control", "public,max-age=86400")
	writeJSON(w, http.StatusCreated, body)
}

func shortURL(base, code string) string {
	return base + "?shortUrl=" + url.QueryEscape(code)
}

// redirectTarget roots longURL under base; stored long URLs are site paths.
func redirectTarget(base, longURL string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(longURL, "/")
}
