package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Email is one outgoing plain-text message.
type Email struct {
	To      []string
	Cc      []string
	ReplyTo string // may carry a display name, "Name <addr>"
	Subject string
	Body    string
}

// Mailer delivers an Email.
type Mailer interface {
	Mail(ctx context.Context, e Email) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTP sends over implicit TLS with PLAIN auth.
type SMTP struct {
	client *mail.Client
	from   string
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSSL(),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTP{client: c, from: cfg.From}, nil
}

func (s *SMTP) Mail(ctx context.Context, e Email) error {
	m, err := buildMsg(s.from, e)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(from string, e Email) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from %q: %w", from, err)
	}
	if err := m.To(e.To...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if len(e.Cc) > 0 {
		if err := m.Cc(e.Cc...); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}
	if e.ReplyTo != "" {
		if err := m.ReplyTo(e.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	m.Subject(e.Subject)
	m.SetBodyString(mail.TypeTextPlain, e.Body)
	return m, nil
}

// LogMailer only logs. Used when no SMTP host is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (l LogMailer) Mail(_ context.Context, e Email) error {
	l.Logger.Info("mail_not_sent",
		zap.Strings("to", e.To),
		zap.Strings("cc", e.Cc),
		zap.String("reply_to", e.ReplyTo),
		zap.String("subject", e.Subject),
		zap.String("body", e.Body),
	)
	return nil
}
