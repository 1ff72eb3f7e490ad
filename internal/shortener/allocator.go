// Package shortener maps long URLs to short random codes.
//
// Codes are allocated optimistically: a random candidate is inserted and the
// store rejects it if the code is taken, in which case a fresh candidate is
// drawn. The store is the only uniqueness authority; the allocator holds no
// locks and keeps no state between calls.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/repo"
)

// RetryLimit is how many candidates one Allocate call may try.
const RetryLimit = 10

var (
	ErrNotFound   = errors.New("short code not found")
	ErrExhausted  = errors.New("failed to generate short URL")
	ErrInvalidURL = errors.New("long URL is required")
)

// Recorder observes allocation attempts.
type Recorder interface {
	ObserveAttempt(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string) {}

// Attempt outcomes reported to the Recorder.
const (
	OutcomeCreated  = "created"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
	OutcomeReused   = "reused"
)

// Allocation is the result of Allocate. Created is false when an existing
// mapping for the same long URL was returned.
type Allocation struct {
	Code    string
	Created bool
}

type Allocator struct {
	store    repo.URLStore
	generate Generator
	logger   *zap.Logger
	recorder Recorder
}

type Option func(*Allocator)

func WithGenerator(g Generator) Option {
	return func(a *Allocator) { a.generate = g }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) { a.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(a *Allocator) { a.recorder = r }
}

func New(store repo.URLStore, opts ...Option) *Allocator {
	a := &Allocator{
		store:    store,
		generate: RandomCode,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve returns the long URL for code, or ErrNotFound.
func (a *Allocator) Resolve(ctx context.Context, code string) (string, error) {
	longURL, err := a.store.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", code, err)
	}
	return longURL, nil
}

// Allocate returns the existing code for longURL, or inserts a new one.
func (a *Allocator) Allocate(ctx context.Context, longURL string) (Allocation, error) {
	if strings.TrimSpace(longURL) == "" {
		return Allocation{}, ErrInvalidURL
	}

	code, err := a.store.FindByURL(ctx, longURL)
	switch {
	case err == nil:
		a.recorder.ObserveAttempt(OutcomeReused)
		return Allocation{Code: code}, nil
	case !errors.Is(err, repo.ErrNotFound):
		return Allocation{}, fmt.Errorf("look up long url: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= RetryLimit; attempt++ {
		code, err := a.generate()
		if err != nil {
			return Allocation{}, err
		}

		err = a.store.Insert(ctx, code, longURL)
		if err == nil {
			a.recorder.ObserveAttempt(OutcomeCreated)
			a.logger.Info("short_allocated",
				zap.String("code", code),
				zap.String("long_url", longURL),
				zap.Int("attempt", attempt),
			)
			return Allocation{Code: code, Created: true}, nil
		}

		lastErr = err
		if errors.Is(err, repo.ErrConflict) {
			a.recorder.ObserveAttempt(OutcomeConflict)
		} else {
			a.recorder.ObserveAttempt(OutcomeError)
			a.logger.Warn("short_insert_error", zap.Int("attempt", attempt), zap.Error(err))
		}
		if ctx.Err() != nil {
			return Allocation{}, ctx.Err()
		}
	}

	a.logger.Error("short_exhausted", zap.String("long_url", longURL), zap.Error(lastErr))
	return Allocation{}, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, RetryLimit, lastErr)
}
