package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultName is the sequence row used when none is configured
const DefaultName = "invoices"

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS invoice_sequences (
	name       TEXT PRIMARY KEY,
	last_value BIGINT NOT NULL CHECK (last_value >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	nextSQL = `INSERT INTO invoice_sequences (name, last_value)
VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE
SET last_value = invoice_sequences.last_value + 1, updated_at = now()
RETURNING last_value`

	peekSQL = `SELECT last_value FROM invoice_sequences WHERE name = $1`
)

// DB is the subset of pgxpool.Pool used by Postgres
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps sequences in the invoice_sequences table, shared by every
// process connected to the same database
type Postgres struct {
	db   DB
	name string
}

// NewPostgres creates a database-backed sequence
func NewPostgres(db DB, name string) *Postgres {
	if name == "" {
		name = DefaultName
	}
	return &Postgres{db: db, name: name}
}

// Connect opens a connection pool for databaseURL
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the sequence table if it does not exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create invoice_sequences: %w", err)
	}
	return nil
}

// Next reserves and returns the next number
func (p *Postgres) Next(ctx context.Context) (int64, error) {
	var last int64
	if err := p.db.QueryRow(ctx, nextSQL, p.name).Scan(&last); err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return last, nil
}

// Peek returns the number Next would return
func (p *Postgres) Peek(ctx context.Context) (int64, error) {
	var last int64
	err := p.db.QueryRow(ctx, peekSQL, p.name).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return First, nil
	}
	if err != nil {
		return 0, fmt.Errorf("peek invoice number: %w", err)
	}
	return last + 1, nil
}
