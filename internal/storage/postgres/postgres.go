// Package postgres is a storage.Store backed by a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/and161185/codenotes/internal/errs"
	"github.com/and161185/codenotes/internal/migrate"
)

// PgxPool is a minimal abstraction over a Postgres connection pool.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// Close shuts down the pool and frees resources.
	Close()
}

// Store keeps key/value rows in the kv table.
type Store struct{ Pool PgxPool }

// New wraps an existing pool.
func New(pool PgxPool) *Store { return &Store{Pool: pool} }

// Open migrates the schema and connects a pool for the given DSN.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	err = migrate.Up(ctx, db, migrate.Postgres)
	_ = db.Close()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres storage: %w", err)
	}
	return &Store{Pool: pool}, nil
}

// Get selects the value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv WHERE key=$1`
	var v []byte
	if err := s.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Set upserts the value for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`
	if value == nil {
		value = []byte{}
	}
	_, err := s.Pool.Exec(ctx, q, key, value)
	return err
}

// Remove deletes the row for key.
func (s *Store) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM kv WHERE key=$1`
	_, err := s.Pool.Exec(ctx, q, key)
	return err
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}
