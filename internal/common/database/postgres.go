package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"work-advisor/internal/common/config"

	"github.com/lib/pq"
)

// PostgresClient stores key-value entries in a single two-column table.
type PostgresClient struct {
	DB    *sql.DB
	table string
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	dsn := cfg.GetDSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresFromDB(db, cfg.Table), nil
}

// NewPostgresFromDB wraps an open handle; table defaults to kv_store.
func NewPostgresFromDB(db *sql.DB, table string) *PostgresClient {
	if table == "" {
		table = "kv_store"
	}
	return &PostgresClient{DB: db, table: table}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the key-value table when missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, pq.QuoteIdentifier(c.table))
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", c.table, err)
	}
	return nil
}

func (c *PostgresClient) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, pq.QuoteIdentifier(c.table))

	var value string
	if err := c.DB.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (c *PostgresClient) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, pq.QuoteIdentifier(c.table))

	if _, err := c.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}
