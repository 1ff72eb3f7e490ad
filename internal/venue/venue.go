// Package venue turns venue-data corrections into tracker issues.
package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/notify"
	"github.com/hamed0406/timetablesvc/internal/transport"
)

var ErrInvalidCorrection = errors.New("invalid venue correction")

// IssueLabel is attached to every filed issue.
const IssueLabel = "venue data"

type Config struct {
	VenuesURL string // current venue map, keyed by venue name
	Mock      bool   // compose and log but never file
}

// Filing describes what Submit produced.
type Filing struct {
	Title string
	Body  string
	Filed bool
	URL   string // link to the issue when Filed
}

type Service struct {
	cfg       Config
	transport transport.Doer
	tracker   notify.IssueTracker
	logger    *zap.Logger
}

func New(cfg Config, t transport.Doer, tracker notify.IssueTracker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, transport: t, tracker: tracker, logger: logger}
}

func (s *Service) Submit(ctx context.Context, c domain.VenueCorrection) (Filing, error) {
	if err := validate(c); err != nil {
		return Filing{}, err
	}

	current, fetchErr := s.currentVenue(ctx, c.Venue)
	if fetchErr != nil {
		s.logger.Warn("venue_fetch_failed", zap.String("venue", c.Venue), zap.Error(fetchErr))
	}

	f := Filing{
		Title: "Venue data update for " + c.Venue,
		Body:  composeBody(c, current, fetchErr),
	}
	s.logger.Info("venue_issue_composed",
		zap.String("venue", c.Venue),
		zap.Bool("debug", c.Debug),
		zap.Bool("mock", s.cfg.Mock),
		zap.String("body", f.Body),
	)

	if c.Debug || s.cfg.Mock {
		return f, nil
	}

	link, err := s.tracker.CreateIssue(ctx, notify.Issue{
		Title:  f.Title,
		Body:   f.Body,
		Labels: []string{IssueLabel},
	})
	if err != nil {
		return f, fmt.Errorf("file venue issue: %w", err)
	}
	f.Filed, f.URL = true, link
	s.logger.Info("venue_issue_filed", zap.String("venue", c.Venue), zap.String("url", link))
	return f, nil
}

func validate(c domain.VenueCorrection) error {
	if strings.TrimSpace(c.Venue) == "" {
		return fmt.Errorf("%w: venue is required", ErrInvalidCorrection)
	}
	if strings.TrimSpace(c.Room) == "" {
		return fmt.Errorf("%w: room is required", ErrInvalidCorrection)
	}
	if c.LatLng != nil && len(c.LatLng) != 2 {
		return fmt.Errorf("%w: latlng must be [lat, lng], got %d values", ErrInvalidCorrection, len(c.LatLng))
	}
	return nil
}

// currentVenue returns the raw entry for name, or nil when the map has none.
func (s *Service) currentVenue(ctx context.Context, name string) (json.RawMessage, error) {
	if s.cfg.VenuesURL == "" {
		return nil, errors.New("venues source not configured")
	}
	res, err := s.transport.Do(ctx, transport.Request{URL: s.cfg.VenuesURL})
	if err != nil {
		return nil, err
	}
	var venues map[string]json.RawMessage
	if err := res.JSON(&venues); err != nil {
		return nil, err
	}
	entry, ok := venues[name]
	if !ok || string(entry) == "null" {
		return nil, nil
	}
	return entry, nil
}

type location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type proposal struct {
	RoomName string    `json:"roomName"`
	Floor    any       `json:"floor,omitempty"`
	Location *location `json:"location,omitempty"`
}

func composeBody(c domain.VenueCorrection, current json.RawMessage, fetchErr error) string {
	p := proposal{RoomName: c.Room, Floor: c.Floor}
	if len(c.LatLng) == 2 {
		p.Location = &location{Y: c.LatLng[0], X: c.LatLng[1]}
	}

	var paragraphs []string
	if c.ReporterEmail != "" {
		paragraphs = append(paragraphs, "Reporter: "+c.ReporterEmail)
	}
	paragraphs = append(paragraphs, dataList(p))

	switch {
	case current != nil:
		paragraphs = append(paragraphs, "**Current version:**", codeBlock(indent(current), "json"))
	case fetchErr != nil:
		paragraphs = append(paragraphs, "**Error fetching current version**", codeBlock(fetchErr.Error(), ""))
	default:
		paragraphs = append(paragraphs, "**Venue does not exist in current version**")
	}

	proposed, _ := json.MarshalIndent(p, "", "  ")
	paragraphs = append(paragraphs,
		"**Update proposed:**",
		codeBlock(strconv.Quote(c.Venue)+": "+string(proposed), "json"),
	)
	return strings.Join(paragraphs, "\n\n")
}

func dataList(p proposal) string {
	items := []string{
		"Room Name: " + p.RoomName,
		"Floor: " + floorText(p.Floor),
	}
	if p.Location != nil {
		y, x := num(p.Location.Y), num(p.Location.X)
		items = append(items, fmt.Sprintf(
			"Location: [%s, %s](https://www.openstreetmap.org/?mlat=%s&mlon=%s#map=19/%s/%s)",
			y, x, y, x, y, x))
	}
	for i, it := range items {
		items[i] = "- " + it
	}
	return strings.Join(items, "\n")
}

func floorText(v any) string {
	switch f := v.(type) {
	case nil:
		return "unspecified"
	case float64:
		return num(f)
	default:
		return fmt.Sprint(f)
	}
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func indent(raw json.RawMessage) string {
	var b bytes.Buffer
	if err := json.Indent(&b, raw, "", "  "); err != nil {
		return string(raw)
	}
	return b.String()
}

func codeBlock(text, lang string) string {
	return "```" + lang + "\n" + text + "\n```"
}
