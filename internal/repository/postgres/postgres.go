// Package postgres implements the repository interfaces on PostgreSQL with
// the pgvector extension.
//
// It speaks database/sql through the pgx stdlib driver. Label lists use
// native text[] columns (bound with lib/pq's array adapters) and embeddings
// use pgvector's vector type, so the store itself enforces the configured
// dimension.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sakif/savebox/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DefaultDimensions matches the embedding size the provider client requests.
const DefaultDimensions = 1536

type DB struct {
	conn       *sql.DB
	dimensions int
}

// New connects to dsn, verifies the connection and ensures every table.
// dimensions fixes the width of the vector columns on first deploy; a
// later change needs a manual migration.
func New(dsn string, dimensions int) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: DSN is empty")
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{conn: conn, dimensions: dimensions}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("postgres: enabling pgvector: %w", err)
	}
	for _, table := range repository.Tables {
		if err := db.EnsureSchema(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) schema(table string) (string, bool) {
	switch table {
	case "bookmarks":
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS bookmarks (
				id                BIGSERIAL PRIMARY KEY,
				owner_key         TEXT NOT NULL,
				title             TEXT NOT NULL,
				summary           TEXT NOT NULL,
				url               TEXT NOT NULL DEFAULT '',
				image             TEXT NOT NULL DEFAULT '',
				tags              TEXT[] NOT NULL DEFAULT '{}',
				collections       TEXT[] NOT NULL DEFAULT '{}',
				embedding_title   vector(%[1]d),
				embedding_summary vector(%[1]d),
				created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created ON bookmarks(owner_key, created_at DESC);
		`, db.dimensions), true
	case "tags", "collections":
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %[1]s (
				id         BIGSERIAL PRIMARY KEY,
				owner_key  TEXT NOT NULL,
				name       TEXT NOT NULL,
				color      TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_%[1]s_owner_created ON %[1]s(owner_key, created_at DESC);
		`, table), true
	case "user_interests":
		return `
			CREATE TABLE IF NOT EXISTS user_interests (
				id         BIGSERIAL PRIMARY KEY,
				owner_key  TEXT NOT NULL UNIQUE,
				interests  TEXT[] NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`, true
	default:
		return "", false
	}
}

// EnsureSchema creates one table if it is missing. Concurrent callers rely
// on Postgres' IF NOT EXISTS handling.
func (db *DB) EnsureSchema(ctx context.Context, table string) error {
	ddl, ok := db.schema(table)
	if !ok {
		return fmt.Errorf("postgres: unknown table %q", table)
	}
	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: creating %s table: %w", table, err)
	}
	return nil
}
