// Package storage provides the SQLite storage layer for muselog.
//
// It owns schema setup, insert-if-absent session creation, full-replace
// run upserts, the labeling mutations, and the canned report queries.
// The store is single-writer oriented: WAL journal mode lets readers
// (labeling UI, reports) run concurrently without blocking the writer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB opened on a SQLite file.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// the durability pragmas. The parent directory is created if absent.
// Call RunMigrations before first use.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	// SQLite allows one writer at a time. Serializing all access through
	// a single connection avoids SQLITE_BUSY between the pool's
	// connections while WAL still lets external readers proceed.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// DB returns the underlying database handle for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
