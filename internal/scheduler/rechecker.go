package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/probe"
)

// Runner executes one status run.
type Runner interface {
	Run(ctx context.Context, defs []probe.Definition) probe.Report
}

// ReportSink receives every report produced by the Rechecker.
type ReportSink interface {
	Observe(ctx context.Context, report probe.Report)
}

// Rechecker re-runs the status probes on a fixed interval.
type Rechecker struct {
	Logger   *zap.Logger
	Runner   Runner
	Defs     []probe.Definition
	Sink     ReportSink
	Interval time.Duration
}

func NewRechecker(logger *zap.Logger, runner Runner, defs []probe.Definition, sink ReportSink, interval time.Duration) *Rechecker {
	if interval < 0 {
		interval = 0
	}
	return &Rechecker{
		Logger:   logger,
		Runner:   runner,
		Defs:     defs,
		Sink:     sink,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	report := r.Runner.Run(ctx, r.Defs)
	if ctx.Err() != nil {
		return
	}
	r.Logger.Debug("rechecker_checked",
		zap.String("run_id", report.RunID),
		zap.Bool("healthy", report.Healthy()),
	)
	if r.Sink != nil {
		r.Sink.Observe(ctx, report)
	}
}
