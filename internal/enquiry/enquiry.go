// Package enquiry relays module-error reports from students to the faculty
// responsible for the module.
package enquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/domain"
	"github.com/hamed0406/timetablesvc/internal/notify"
	"github.com/hamed0406/timetablesvc/internal/transport"
)

var (
	ErrInvalidEnquiry = errors.New("invalid enquiry")
	ErrUnknownContact = errors.New("unknown faculty contact")
)

type Config struct {
	DirectoryURL  string // JSON array of {"id","email"}
	KillSwitchURL string // answers "stop" to suppress delivery; empty disables the check
	TeamAddress   string
	SiteName      string
	SiteURL       string
}

type Service struct {
	cfg       Config
	transport transport.Doer
	mailer    notify.Mailer
	logger    *zap.Logger
}

func New(cfg Config, t transport.Doer, m notify.Mailer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, transport: t, mailer: m, logger: logger}
}

// Submit validates the enquiry, resolves where it should go and mails it.
func (s *Service) Submit(ctx context.Context, enq domain.ModuleEnquiry) (DeliveryMode, error) {
	if err := validate(enq); err != nil {
		return 0, err
	}

	facultyEmail, err := s.lookupContact(ctx, enq.ContactID)
	if err != nil {
		return 0, err
	}

	mode := s.resolveMode(ctx, enq.Debug)
	email := s.compose(enq, facultyEmail, mode)

	s.logger.Info("enquiry_sending",
		zap.String("module", enq.ModuleCode),
		zap.String("contact_id", enq.ContactID),
		zap.String("faculty_email", facultyEmail),
		zap.Stringer("mode", mode),
	)
	if err := s.mailer.Mail(ctx, email); err != nil {
		return mode, fmt.Errorf("deliver enquiry: %w", err)
	}
	return mode, nil
}

func validate(enq domain.ModuleEnquiry) error {
	required := []struct{ name, value string }{
		{"name", enq.Name},
		{"contactId", enq.ContactID},
		{"moduleCode", enq.ModuleCode},
		{"replyTo", enq.ReplyTo},
		{"message", enq.Message},
		{"matricNumber", enq.MatricNumber},
	}
	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidEnquiry, strings.Join(missing, ", "))
	}
	return nil
}

type contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Service) lookupContact(ctx context.Context, id string) (string, error) {
	res, err := s.transport.Do(ctx, transport.Request{URL: s.cfg.DirectoryURL})
	if err != nil {
		return "", fmt.Errorf("fetch faculty directory: %w", err)
	}
	var contacts []contact
	if err := res.JSON(&contacts); err != nil {
		return "", fmt.Errorf("faculty directory: %w", err)
	}
	for _, c := range contacts {
		if c.ID == id {
			return c.Email, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContact, id)
}

// resolveMode runs before composition. An unreachable kill switch suppresses.
func (s *Service) resolveMode(ctx context.Context, debug bool) DeliveryMode {
	if debug {
		return ModeDebug
	}
	if s.cfg.KillSwitchURL == "" {
		return ModeNormal
	}
	res, err := s.transport.Do(ctx, transport.Request{URL: s.cfg.KillSwitchURL})
	if err != nil {
		s.logger.Error("killswitch_unreachable", zap.Error(err))
		return ModeSuppressed
	}
	if res.Text() == "stop" {
		return ModeSuppressed
	}
	return ModeNormal
}

func (s *Service) compose(enq domain.ModuleEnquiry, facultyEmail string, mode DeliveryMode) notify.Email {
	site, team := s.cfg.SiteName, s.cfg.TeamAddress

	e := notify.Email{
		ReplyTo: fmt.Sprintf("%s <%s>", enq.Name, enq.ReplyTo),
		Subject: fmt.Sprintf("[%s] Enquiry/issue about %s on %s from %s (%s)",
			site, enq.ModuleCode, site, enq.Name, enq.MatricNumber),
	}
	if mode == ModeNormal {
		e.To = []string{facultyEmail}
		e.Cc = []string{team, enq.ReplyTo}
	} else {
		e.To = []string{team}
	}

	moduleURL := strings.TrimRight(s.cfg.SiteURL, "/") + "/modules/" + enq.ModuleCode

	var b strings.Builder
	b.WriteString(mode.banner(facultyEmail))
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "%s (%s) reported the following issue with %s (%s) on %s. "+
		"Since %s obtains its information directly from the Registrar's Office, "+
		"we hope you can help check that the information is correct and update it if necessary.\n\n",
		enq.Name, enq.MatricNumber, enq.ModuleCode, moduleURL, site, site)
	b.WriteString(quote(enq.Message))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Please reply directly to this email to reply to the student. "+
		"You can also reply to %s (which is cc'd on this email) if you believe the issue is with %s itself. "+
		"If you have already made changes to the module, please note that it may take up to 24 hours to be reflected on %s.\n\n",
		team, site, site)
	fmt.Fprintf(&b, "Regards,\nThe %s Team", site)
	e.Body = b.String()
	return e
}

func quote(message string) string {
	lines := strings.Split(message, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
