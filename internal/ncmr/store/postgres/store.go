package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ncmr/pkg/platform/sentinel"
)

const defaultTable = "ncmr_kv"

// Store persists values in a PostgreSQL key-value table.
type Store struct {
	db    *sql.DB
	table string
}

type Option func(*Store)

// WithTable overrides the table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = name
		}
	}
}

// Open connects with the lib/pq driver and ensures the table exists.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, table: defaultTable}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, pq.QuoteIdentifier(s.table))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, pq.QuoteIdentifier(s.table))
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", wrapErr("select", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, pq.QuoteIdentifier(s.table))
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return wrapErr("upsert", key, err)
	}
	return nil
}

// wrapErr reports connection exceptions (SQLSTATE class 08) as ErrUnavailable.
func wrapErr(op, key string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return fmt.Errorf("%s %s: %w", op, key, sentinel.ErrUnavailable)
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}

func (s *Store) Close() error {
	return s.db.Close()
}
