// Package postgres opens the analytics snapshot database over lib/pq and
// narrows database/sql to the two operations the snapshot store needs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	_ "github.com/lib/pq"
)

const openTimeout = 5 * time.Second

// Client holds a pooled connection to PostgreSQL.
type Client struct {
	db *sql.DB
}

// Open connects with the pool limits from cfg and fails fast if the server
// does not answer a ping within openTimeout.
func Open(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Client{db: db}, nil
}

// Exec runs a statement that returns no rows.
func (c *Client) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

// QueryRow runs a query expected to return at most one row.
func (c *Client) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

// Ping checks connectivity, for use by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.db.Close()
}
