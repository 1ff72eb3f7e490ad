package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/enquiry"
	"github.com/hamed0406/timetablesvc/internal/probe"
	"github.com/hamed0406/timetablesvc/internal/repo"
	"github.com/hamed0406/timetablesvc/internal/repo/memory"
	"github.com/hamed0406/timetablesvc/internal/shortener"
	"github.com/hamed0406/timetablesvc/internal/venue"
)

// ---- test helpers ----

type fakeRunner struct{ report probe.Report }

func (f fakeRunner) Run(context.Context, []probe.Definition) probe.Report { return f.report }

type fakeEnquiries struct {
	got []domain.ModuleEnquiry
	err error
}

func (f *fakeEnquiries) Submit(_ context.Context, enq domain.ModuleEnquiry) (enquiry.DeliveryMode, error) {
	f.got = append(f.got, enq)
	return enquiry.ModeNormal, f.err
}

type fakeVenues struct {
	got []domain.VenueCorrection
	err error
}

func (f *fakeVenues) Submit(_ context.Context, c domain.VenueCorrection) (venue.Filing, error) {
	f.got = append(f.got, c)
	return venue.Filing{Filed: f.err == nil}, f.err
}

type brokenStore struct{ err error }

func (b brokenStore) FindByCode(context.Context, string) (string, error) { return "", b.err }
func (b brokenStore) FindByURL(context.Context, string) (string, error)  { return "", repo.ErrNotFound }
func (b brokenStore) Insert(context.Context, string, string) error       { return b.err }

func healthyReport() probe.Report {
	return probe.Report{Results: []probe.Result{
		{Title: "Module Search", URL: "http://s", Status: "At least 3 modules", StatusCode: 200},
		{Title: "Export", URL: "http://e", Status: "OK", StatusCode: 200},
	}}
}

func degradedReport() probe.Report {
	r := healthyReport()
	r.Results[1].Status = ""
	r.Results[1].Error = "Request failed with status code 502"
	r.Results[1].StatusCode = 502
	return r
}

type testDeps struct {
	srv       *Server
	enquiries *fakeEnquiries
	venues    *fakeVenues
}

func setup(t *testing.T, report probe.Report, store repo.URLStore) testDeps {
	t.Helper()
	d := testDeps{enquiries: &fakeEnquiries{}, venues: &fakeVenues{}}
	d.srv = &Server{
		Logger:    zap.NewNop(),
		Status:    fakeRunner{report: report},
		Shortener: shortener.New(store),
		Enquiries: d.enquiries,
		Venues:    d.venues,
		Opts: Options{
			StatusTitle:  "Timetable Status",
			ShortURLBase: "https://short.test",
			RedirectBase: "https://site.test",
		},
	}
	return d
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// ---- status ----

func TestStatus_JSON(t *testing.T) {
	h := setup(t, healthyReport(), memory.New()).srv.Router()

	rr := do(t, h, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Module Search", got[0]["title"])
	assert.Equal(t, "OK", got[1]["status"])
}

func TestStatus_DegradedIs500(t *testing.T) {
	h := setup(t, degradedReport(), memory.New()).srv.Router()

	rr := do(t, h, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"Request failed with status code 502"`)
}

func TestStatus_Text(t *testing.T) {
	h := setup(t, degradedReport(), memory.New()).srv.Router()

	rr := do(t, h, http.MethodGet, "/status?format=text", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Timetable Status\n================\n\n"))
	assert.Contains(t, rr.Body.String(), "❌ Export        - Request failed with status code 502")
}

// ---- short ----

var shortURLPattern = regexp.MustCompile(`^https://short\.test\?shortUrl=[0-9a-z]{6}$`)

func TestShort_AllocateThenReuseThenRedirect(t *testing.T) {
	h := setup(t, healthyReport(), memory.New()).srv.Router()

	rr := do(t, h, http.MethodPut, "/short", `{"longUrl":"/timetable/sem-1?CS1010=LEC:1"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "public,max-age=86400", rr.Header().Get("Cache-Control"))
	var created allocateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Regexp(t, shortURLPattern, created.ShortURL)

	rr = do(t, h, http.MethodPut, "/short", `{"longUrl":"/timetable/sem-1?CS1010=LEC:1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Cache-Control"))
	var reused allocateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reused))
	assert.Equal(t, created.ShortURL, reused.ShortURL)

	code := strings.TrimPrefix(created.ShortURL, "https://short.test?shortUrl=")
	rr = do(t, h, http.MethodGet, "/short?shortUrl="+code, "")
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://site.test/timetable/sem-1?CS1010=LEC:1", rr.Header().Get("Location"))
}

func TestShort_Errors(t *testing.T) {
	h := setup(t, healthyReport(), memory.New()).srv.Router()

	cases := []struct {
		name, method, target, body string
		code                       int
		msg                        string
	}{
		{"missing param", http.MethodGet, "/short", "", 400, "Missing shortUrl parameter"},
		{"unknown code", http.MethodGet, "/short?shortUrl=zzzzzz", "", 404, "Long URL not found"},
		{"missing field", http.MethodPut, "/short", `{"url":"/x"}`, 400, "Long URL not found in request body"},
		{"bad json", http.MethodPut, "/short", `{`, 400, "Long URL not found in request body"},
		{"empty url", http.MethodPut, "/short", `{"longUrl":""}`, 400, "Long URL not found in request body"},
		{"wrong method", http.MethodDelete, "/short", "", 405, "Method not allowed"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := do(t, h, c.method, c.target, c.body)
			assert.Equal(t, c.code, rr.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, c.msg, body.Error)
		})
	}
}

func TestShort_ExhaustedIs500(t *testing.T) {
	h := setup(t, healthyReport(), brokenStore{err: repo.ErrConflict}).srv.Router()

	rr := do(t, h, http.MethodPut, "/short", `{"longUrl":"/x"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to generate short URL"}`, rr.Body.String())
}

func TestShort_StoreFailureIsNot404(t *testing.T) {
	h := setup(t, healthyReport(), brokenStore{err: errors.New("db down")}).srv.Router()

	rr := do(t, h, http.MethodGet, "/short?shortUrl=abc123", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// ---- module-error / venue ----

func TestEnquiry(t *testing.T) {
	d := setup(t, healthyReport(), memory.New())
	h := d.srv.Router()

	rr := do(t, h, http.MethodPost, "/module-error", `{"name":"Ann","contactId":"soc","moduleCode":"CS1010"}`)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, d.enquiries.got, 1)
	assert.Equal(t, "CS1010", d.enquiries.got[0].ModuleCode)

	d.enquiries.err = enquiry.ErrInvalidEnquiry
	rr = do(t, h, http.MethodPost, "/module-error", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	d.enquiries.err = errors.New("smtp down")
	rr = do(t, h, http.MethodPost, "/module-error", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Failed to send enquiry"}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/module-error", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVenue(t *testing.T) {
	d := setup(t, healthyReport(), memory.New())
	h := d.srv.Router()

	rr := do(t, h, http.MethodPost, "/venue", `{"venue":"LT19","room":"Lecture Theatre 19","latlng":[1.2,103.7]}`)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, d.venues.got, 1)
	assert.Equal(t, []float64{1.2, 103.7}, d.venues.got[0].LatLng)

	d.venues.err = venue.ErrInvalidCorrection
	rr = do(t, h, http.MethodPost, "/venue", `{"venue":"LT19"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	d.venues.err = errors.New("github down")
	rr = do(t, h, http.MethodPost, "/venue", `{"venue":"LT19","room":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestBodyLimit(t *testing.T) {
	d := setup(t, healthyReport(), memory.New())
	h := d.srv.Router()

	big := `{"venue":"` + strings.Repeat("a", maxBody) + `","room":"r"}`
	rr := do(t, h, http.MethodPost, "/venue", big)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, d.venues.got)
}
