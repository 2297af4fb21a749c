// Package testutil provides shared test infrastructure: a migrated
// SQLite store in a per-test temp directory.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/muselabs/muselog/internal/storage"
	"github.com/muselabs/muselog/migrations"
)

// NewTestStore opens a fresh store under t.TempDir() with all
// migrations applied. The store is closed via t.Cleanup.
func NewTestStore(t *testing.T) *storage.Store {
	t.Helper()
	ctx := context.Background()

	store, err := storage.Open(ctx, filepath.Join(t.TempDir(), "runs.db"), TestLogger())
	if err != nil {
		t.Fatalf("testutil: open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("testutil: run migrations: %v", err)
	}
	return store
}

// TestLogger returns a logger configured for test output (warns only).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
