package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/timetablesvc/internal/repo"
)

var _ repo.URLStore = (*Store)(nil)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS url (
  short_url TEXT PRIMARY KEY,
  long_url  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_url_long_url ON url (long_url);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the url table when it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) FindByCode(ctx context.Context, code string) (string, error) {
	var longURL string
	err := s.pool.QueryRow(ctx,
		`SELECT long_url FROM url WHERE short_url = $1`, code,
	).Scan(&longURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find by code: %w", err)
	}
	return longURL, nil
}

func (s *Store) FindByURL(ctx context.Context, longURL string) (string, error) {
	var code string
	err := s.pool.QueryRow(ctx,
		`SELECT short_url FROM url WHERE long_url = $1 LIMIT 1`, longURL,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repo.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find by url: %w", err)
	}
	return code, nil
}

func (s *Store) Insert(ctx context.Context, code, longURL string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO url (short_url, long_url) VALUES ($1, $2)`,
		code, longURL,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		s.log.Debug("short_code_conflict", zap.String("code", code))
		return repo.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert url: %w", err)
	}
	return nil
}
