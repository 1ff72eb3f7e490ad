package venue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/notify"
	"github.com/hamed0406/timetablesvc/internal/transport"
)

const venuesURL = "http://venues.test/venues"

type stubTransport struct {
	body  string
	err   error
	calls int
}

func (s *stubTransport) Do(context.Context, transport.Request) (*transport.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{StatusCode: 200, Body: []byte(s.body)}, nil
}

type captureTracker struct {
	issues []notify.Issue
	err    error
}

func (c *captureTracker) CreateIssue(_ context.Context, is notify.Issue) (string, error) {
	c.issues = append(c.issues, is)
	if c.err != nil {
		return "", c.err
	}
	return "https://github.com/org/repo/issues/1", nil
}

func correction() domain.VenueCorrection {
	return domain.VenueCorrection{
		Venue:         "LT19",
		Room:          "Lecture Theatre 19",
		LatLng:        []float64{1.2935, 103.7727},
		Floor:         1,
		ReporterEmail: "r@u.edu",
	}
}

func TestSubmit_FilesIssueWithCurrentVersion(t *testing.T) {
	st := &stubTransport{body: `{"LT19":{"roomName":"LT19","floor":1},"LT18":{"roomName":"LT18"}}`}
	tr := &captureTracker{}
	s := New(Config{VenuesURL: venuesURL}, st, tr, zap.NewNop())

	f, err := s.Submit(context.Background(), correction())
	require.NoError(t, err)

	want := "Reporter: r@u.edu\n\n" +
		"- Room Name: Lecture Theatre 19\n" +
		"- Floor: 1\n" +
		"- Location: [1.2935, 103.7727](https://www.openstreetmap.org/?mlat=1.2935&mlon=103.7727#map=19/1.2935/103.7727)\n\n" +
		"**Current version:**\n\n" +
		"```json\n{\n  \"roomName\": \"LT19\",\n  \"floor\": 1\n}\n```\n\n" +
		"**Update proposed:**\n\n" +
		"```json\n\"LT19\": {\n  \"roomName\": \"Lecture Theatre 19\",\n  \"floor\": 1,\n" +
		"  \"location\": {\n    \"x\": 103.7727,\n    \"y\": 1.2935\n  }\n}\n```"
	assert.Equal(t, want, f.Body)
	assert.True(t, f.Filed)
	assert.Equal(t, "https://github.com/org/repo/issues/1", f.URL)

	require.Len(t, tr.issues, 1)
	assert.Equal(t, "Venue data update for LT19", tr.issues[0].Title)
	assert.Equal(t, []string{"venue data"}, tr.issues[0].Labels)
	assert.Equal(t, want, tr.issues[0].Body)
}

func TestSubmit_VenueMissingFromCurrentVersion(t *testing.T) {
	st := &stubTransport{body: `{"LT18":{}}`}
	c := domain.VenueCorrection{Venue: "NEW-01", Room: "New Room"}

	f, err := New(Config{VenuesURL: venuesURL, Mock: true}, st, &captureTracker{}, nil).Submit(context.Background(), c)
	require.NoError(t, err)

	want := "- Room Name: New Room\n- Floor: unspecified\n\n" +
		"**Venue does not exist in current version**\n\n" +
		"**Update proposed:**\n\n" +
		"```json\n\"NEW-01\": {\n  \"roomName\": \"New Room\"\n}\n```"
	assert.Equal(t, want, f.Body)
}

func TestSubmit_FetchErrorIsReportedInBody(t *testing.T) {
	st := &stubTransport{err: errors.New("connection refused")}
	tr := &captureTracker{}

	f, err := New(Config{VenuesURL: venuesURL}, st, tr, nil).Submit(context.Background(), correction())
	require.NoError(t, err)
	assert.Contains(t, f.Body, "**Error fetching current version**\n\n```\nconnection refused\n```")
	assert.True(t, f.Filed, "fetch failures do not block filing")
}

func TestSubmit_DebugAndMockDoNotFile(t *testing.T) {
	debug := correction()
	debug.Debug = true

	cases := []struct {
		name string
		cfg  Config
		in   domain.VenueCorrection
	}{
		{"debug request", Config{VenuesURL: venuesURL}, debug},
		{"mock config", Config{VenuesURL: venuesURL, Mock: true}, correction()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := &captureTracker{}
			f, err := New(c.cfg, &stubTransport{body: `{}`}, tr, nil).Submit(context.Background(), c.in)
			require.NoError(t, err)
			assert.False(t, f.Filed)
			assert.NotEmpty(t, f.Body)
			assert.Empty(t, tr.issues)
		})
	}
}

func TestSubmit_Invalid(t *testing.T) {
	cases := map[string]domain.VenueCorrection{
		"no venue":     {Room: "r"},
		"no room":      {Venue: "v"},
		"short latlng": {Venue: "v", Room: "r", LatLng: []float64{1}},
		"long latlng":  {Venue: "v", Room: "r", LatLng: []float64{1, 2, 3}},
		"empty latlng": {Venue: "v", Room: "r", LatLng: []float64{}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			st := &stubTransport{}
			tr := &captureTracker{}
			_, err := New(Config{VenuesURL: venuesURL}, st, tr, nil).Submit(context.Background(), c)
			assert.ErrorIs(t, err, ErrInvalidCorrection)
			assert.Zero(t, st.calls)
			assert.Empty(t, tr.issues)
		})
	}
}

func TestSubmit_TrackerFailure(t *testing.T) {
	tr := &captureTracker{err: errors.New("401 Bad credentials")}
	f, err := New(Config{VenuesURL: venuesURL}, &stubTransport{body: `{}`}, tr, nil).Submit(context.Background(), correction())
	require.Error(t, err)
	assert.False(t, f.Filed)
	assert.Contains(t, err.Error(), "Bad credentials")
}
