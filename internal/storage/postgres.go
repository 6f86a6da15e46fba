package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresBackend keeps every key in a single kv_store table.
type PostgresBackend struct {
	DB *sqlx.DB
}

// NewPostgresBackend creates the kv_store table if needed.
func NewPostgresBackend(ctx context.Context, db *sqlx.DB) (*PostgresBackend, error) {
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("create kv_store: %w", err)
	}
	return &PostgresBackend{DB: db}, nil
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.DB.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key=$1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	query := `
        INSERT INTO kv_store (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()
    `
	_, err := p.DB.ExecContext(ctx, query, key, string(value))
	return err
}

func (p *PostgresBackend) Close() error {
	return p.DB.Close()
}

var _ Backend = (*PostgresBackend)(nil)
