// Package sqlite provides SQLite-based storage for archived articles and
// threads.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragmas are applied to every connection before the schema is touched.
// WAL is skipped for in-memory databases, which do not support it.
var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Open opens the database connection and migrates the schema to the
// current version.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	stmts := pragmas
	if db.path != ":memory:" {
		stmts = append(stmts[:len(stmts):len(stmts)], "PRAGMA journal_mode = WAL")
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}

	db.db = conn

	if err := db.migrate(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// SchemaVersion returns the number of migrations applied to the database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

// migrate applies the migrations newer than the database's user_version,
// each in its own transaction.
func (db *DB) migrate() error {
	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// migrations are applied in order and never edited once released.
var migrations = []string{
	// 1: listing rows.
	`CREATE TABLE articles (
		id TEXT PRIMARY KEY,
		href TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		author_name TEXT NOT NULL,
		author_picture TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		replies INTEGER NOT NULL DEFAULT 0,
		last_reply_name TEXT NOT NULL DEFAULT '',
		last_reply_at TEXT NOT NULL,
		preview_images TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);
	CREATE INDEX idx_articles_author_name ON articles(author_name);
	CREATE INDEX idx_articles_published_at ON articles(published_at);`,

	// 2: archived threads and their posts.
	`CREATE TABLE threads (
		id TEXT PRIMARY KEY,
		href TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE talks (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		floor INTEGER NOT NULL,
		page INTEGER NOT NULL,
		author_name TEXT NOT NULL,
		author_picture TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL,
		contents TEXT NOT NULL DEFAULT '[]',
		replies TEXT NOT NULL DEFAULT '[]',
		content_hash TEXT NOT NULL,
		UNIQUE (thread_id, floor)
	);`,
}
