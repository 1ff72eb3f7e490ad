package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hamed0406/timetablesvc/internal/transport"
)

type Slack struct {
	Webhook   string
	Transport transport.Doer
}

// NewSlack returns nil when no webhook is configured.
func NewSlack(webhook string, t transport.Doer) *Slack {
	if webhook == "" {
		return nil
	}
	return &Slack{Webhook: webhook, Transport: t}
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Send(ctx context.Context, title, text string) error {
	if s == nil || s.Webhook == "" {
		return errors.New("slack disabled")
	}
	_, err := s.Transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    s.Webhook,
		Body:   slackPayload{Text: "*" + title + "*\n" + text},
	})
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}
