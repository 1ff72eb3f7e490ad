package repo

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("repo: not found")
	// ErrConflict is returned when an insert collides with an existing short code.
	ErrConflict = errors.New("repo: short code already taken")
)

// URLStore is the persistent short code -> long URL mapping.
// Implemented by memory.Store and postgres.Store.
type URLStore interface {
	// FindByCode returns the long URL for a short code.
	FindByCode(ctx context.Context, code string) (string, error)
	// FindByURL returns an existing short code for a long URL.
	FindByURL(ctx context.Context, longURL string) (string, error)
	// Insert stores the pair only if code is unused; otherwise ErrConflict.
	Insert(ctx context.Context, code, longURL string) error
}
