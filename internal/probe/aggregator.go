package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/timetablesvc/internal/transport"
)

// Recorder observes each probe outcome.
type Recorder interface {
	ObserveProbe(title string, healthy bool, took time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(string, bool, time.Duration) {}

// Aggregator runs a list of probes concurrently and combines their results.
type Aggregator struct {
	transport transport.Doer
	timeout   time.Duration
	logger    *zap.Logger
	recorder  Recorder
}

type Option func(*Aggregator)

// WithTimeout bounds every probe. Zero means no bound beyond the transport's own.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

func NewAggregator(t transport.Doer, opts ...Option) *Aggregator {
	a := &Aggregator{
		transport: t,
		logger:    zap.NewNop(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes every definition and waits for all of them to settle.
// Results come back in definition order regardless of completion order.
func (a *Aggregator) Run(ctx context.Context, defs []Definition) Report {
	runID := uuid.NewString()
	start := time.Now()

	results := make([]Result, len(defs))
	var g errgroup.Group
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			results[i] = a.runOne(ctx, def)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{RunID: runID, Results: results}
	failed := report.Failed()
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("probes", len(results)),
		zap.Int("failed", len(failed)),
		zap.Duration("took", time.Since(start)),
	}
	for _, r := range failed {
		a.logger.Warn("probe_failed",
			zap.String("run_id", runID),
			zap.String("title", r.Title),
			zap.String("url", r.URL),
			zap.Int("status_code", r.StatusCode),
			zap.String("error", r.Error),
		)
	}
	a.logger.Info("status_run", fields...)
	return report
}

func (a *Aggregator) runOne(ctx context.Context, def Definition) (res Result) {
	res = Result{
		Title:       def.Title,
		Description: def.Description,
		URL:         def.Target.URL,
	}

	start := time.Now()
	defer func() {
		a.recorder.ObserveProbe(def.Title, !res.Failed(), time.Since(start))
	}()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.transport.Do(ctx, def.Target)
	if err != nil {
		res.Error = message(err)
		if resp != nil {
			res.StatusCode = resp.StatusCode
			res.ResponseData = rawPayload(resp.Body)
		}
		return res
	}

	res.StatusCode = resp.StatusCode
	status, err := evaluate(def.Check, resp)
	if err != nil {
		res.Error = message(err)
		res.ResponseData = rawPayload(resp.Body)
		return res
	}
	res.Status = status
	return res
}

// evaluate applies the policy, converting a panicking check into an error.
func evaluate(p CheckPolicy, resp *transport.Response) (status string, err error) {
	if p == nil {
		p = NoCheck{}
	}
	defer func() {
		if r := recover(); r != nil {
			status, err = "", fmt.Errorf("check panicked: %v", r)
		}
	}()

	status, err = p.evaluate(resp)
	if err == nil && status == "" {
		status = "OK"
	}
	return status, err
}

func message(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "check failed"
}
