package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/notify"
	"github.com/hamed0406/timetablesvc/internal/probe"
)

type AlerterConfig struct {
	AlertOnRecovery bool
}

// Alerter posts a message when overall health flips. The first report only
// alerts when it is unhealthy.
type Alerter struct {
	notifier notify.Notifier
	logger   *zap.Logger
	cfg      AlerterConfig

	mu   sync.Mutex
	last *bool
}

func NewAlerter(n notify.Notifier, logger *zap.Logger, cfg AlerterConfig) *Alerter {
	return &Alerter{notifier: n, logger: logger, cfg: cfg}
}

func (a *Alerter) Observe(ctx context.Context, report probe.Report) {
	healthy := report.Healthy()

	a.mu.Lock()
	prev := a.last
	a.last = &healthy
	a.mu.Unlock()

	stateChanged := prev == nil || *prev != healthy
	downAlert := stateChanged && !healthy
	recoveryAlert := stateChanged && healthy && prev != nil && a.cfg.AlertOnRecovery
	if !downAlert && !recoveryAlert {
		return
	}

	title := "🔴 Status DEGRADED"
	if healthy {
		title = "🟢 Status RECOVERED"
	}
	text := summary(report)

	// best-effort
	if err := a.notifier.Send(ctx, title, text); err != nil {
		a.logger.Warn("alert_send_failed", zap.String("run_id", report.RunID), zap.Error(err))
		return
	}
	a.logger.Info("alert_sent", zap.String("run_id", report.RunID), zap.Bool("healthy", healthy))
}

func summary(report probe.Report) string {
	failed := report.Failed()
	if len(failed) == 0 {
		return fmt.Sprintf("All %d probes healthy.", len(report.Results))
	}
	lines := make([]string, 0, len(failed)+1)
	lines = append(lines, fmt.Sprintf("%d of %d probes failing:", len(failed), len(report.Results)))
	for _, r := range failed {
		line := fmt.Sprintf("• %s: %s", r.Title, r.Error)
		if r.StatusCode != 0 {
			line += fmt.Sprintf(" (HTTP %d)", r.StatusCode)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
