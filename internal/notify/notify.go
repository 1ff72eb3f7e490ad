// Package notify delivers messages to people: e-mail, GitHub issues and Slack.
package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier posts a short titled message to an operator channel.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to every notifier and reports all failures.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// LogNotifier writes every message to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l LogNotifier) Send(_ context.Context, title, text string) error {
	l.Logger.Warn("notify", zap.String("title", title), zap.String("text", text))
	return nil
}
