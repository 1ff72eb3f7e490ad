package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type seen struct {
	route, method string
	code          int
}

type recordObserver struct{ got []seen }

func (o *recordObserver) ObserveRequest(route, method string, code int) {
	o.got = append(o.got, seen{route, method, code})
}

func TestRequestLog_RecordsStatusSizeAndRoute(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := &recordObserver{}

	r := chi.NewRouter()
	r.Use(RequestLog(zap.New(core), obs))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "http_request", logs.All()[0].Message)
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(len("short and stout")), fields["size"])
	assert.Equal(t, "/items/{id}", fields["route"])

	assert.Equal(t, []seen{
		{"/items/{id}", http.MethodGet, http.StatusTeapot},
		{"/plain", http.MethodGet, http.StatusOK},
	}, obs.got)
}

func TestCORS_PreflightPassesThrough(t *testing.T) {
	h := CORS(http.MethodGet, http.MethodPut)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/short", nil)
	req.Header.Set("Origin", "https://site.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PUT, OPTIONS", rr.Header().Get("Allow"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestCORS_ActualRequestGetsOriginHeader(t *testing.T) {
	h := CORS(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodPost, "/venue", nil)
	req.Header.Set("Origin", "https://site.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rr.Header().Get("Allow"))
}

func TestCORS_WildcardOriginWithoutOriginHeader(t *testing.T) {
	h := CORS(http.MethodGet, http.MethodPut)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	for _, method := range []string{http.MethodOptions, http.MethodDelete} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/short", nil))
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"), method)
		assert.Equal(t, "GET, PUT, OPTIONS", rr.Header().Get("Allow"), method)
	}
}
