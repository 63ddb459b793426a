// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation
// of the SQLite C code. No C compiler needed, works everywhere Go works.
//
// LIST COLUMNS:
// SQLite has no array or vector type. Tag/collection names, interests and
// embeddings are stored as JSON text and decoded on the way out.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The sqlite package's init() registers a database/sql driver named "sqlite".
	_ "modernc.org/sqlite"

	"github.com/sakif/savebox/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// schemas holds the fixed column set for every table, keyed by table name.
// Each entry is independently idempotent.
var schemas = map[string]string{
	"bookmarks": `
		CREATE TABLE IF NOT EXISTS bookmarks (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_key         TEXT NOT NULL,
			title             TEXT NOT NULL,
			summary           TEXT NOT NULL,
			url               TEXT NOT NULL DEFAULT '',
			image             TEXT NOT NULL DEFAULT '',
			tags              TEXT NOT NULL DEFAULT '[]',
			collections       TEXT NOT NULL DEFAULT '[]',
			embedding_title   TEXT,
			embedding_summary TEXT,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created ON bookmarks(owner_key, created_at);
	`,
	"tags": `
		CREATE TABLE IF NOT EXISTS tags (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_key  TEXT NOT NULL,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_tags_owner_created ON tags(owner_key, created_at);
	`,
	"collections": `
		CREATE TABLE IF NOT EXISTS collections (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_key  TEXT NOT NULL,
			name       TEXT NOT NULL,
			color      TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_collections_owner_created ON collections(owner_key, created_at);
	`,
	"user_interests": `
		CREATE TABLE IF NOT EXISTS user_interests (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_key  TEXT NOT NULL UNIQUE,
			interests  TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`,
}

// New opens the database, applies pragmas and ensures every table exists.
//
// dbPath examples:
//   - "data/savebox.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// Pin the pool to one connection so the schema is visible to every query.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate ensures every known table once, at startup. Handlers never
// create tables on the request path.
func (db *DB) migrate(ctx context.Context) error {
	for _, table := range repository.Tables {
		if err := db.EnsureSchema(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

// EnsureSchema creates one table (and its indexes) if it does not exist yet.
// Safe to call any number of times, including concurrently.
func (db *DB) EnsureSchema(ctx context.Context, table string) error {
	ddl, ok := schemas[table]
	if !ok {
		return fmt.Errorf("sqlite: unknown table %q", table)
	}
	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: creating %s table: %w", table, err)
	}
	return nil
}
