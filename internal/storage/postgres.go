package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPostgresTable = "storefront_collections"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStorage is a Backend on a single PostgreSQL table of (key, jsonb value) rows.
type PostgresStorage struct {
	pool  *pgxpool.Pool
	table string
}

var _ Backend = (*PostgresStorage)(nil)

// NewPostgresStorage creates a connection pool, pings it (fail early) and returns the storage.
// connectTimeout bounds only the initial connect and ping.
func NewPostgresStorage(ctx context.Context, url, table string, connectTimeout time.Duration) (*PostgresStorage, error) {
	if table == "" {
		table = defaultPostgresTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid postgres table name: %q", table)
	}

	poolCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(poolCtx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	if err := pool.Ping(poolCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStorage{pool: pool, table: table}, nil
}

// EnsureSchema creates the backing table if it does not exist yet.
func (p *PostgresStorage) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        text PRIMARY KEY,
		value      jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, p.table))
	if err != nil {
		return fmt.Errorf("failed to create table %s: %w", p.table, err)
	}
	return nil
}

// Close closes the connection pool
func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// Get retrieves a value by key
func (p *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	var value []byte
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, p.table), key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set upserts the value stored under key
func (p *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, p.table),
		key, value)
	return err
}

// Delete removes a key
func (p *PostgresStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, p.table), key)
	return err
}

// Keys lists keys starting with prefix in lexical order
func (p *PostgresStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT key FROM %s WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`, p.table), prefix)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
