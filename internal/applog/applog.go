// Package applog persists raw events as newline-delimited JSON in
// per-day files, independent of the relational store.
//
// The log is a best-effort audit trail for replay: it is deliberately
// not transactionally linked to the store, so a crash between a store
// write and a log append can leave the two out of sync. The store is
// the source of truth for querying.
package applog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer appends events to <dir>/<YYYY-MM-DD>.ndjson, creating the
// directory and file as needed.
type Writer struct {
	dir string

	// now is overridable for tests.
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir. The directory is created
// lazily on first append.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Dir returns the log directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Append serializes event to one JSON line and appends it to today's
// (UTC) log file. The write is a single O_APPEND write of a complete
// line, so concurrent appends from multiple processes interleave whole
// lines rather than bytes. Existing content is never rewritten.
func (w *Writer) Append(event any) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("applog: marshal event: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("applog: create log directory: %w", err)
	}

	day := w.now().UTC().Format("2006-01-02")
	path := filepath.Join(w.dir, day+".ndjson")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("applog: open %s: %w", path, err)
	}

	_, werr := f.Write(append(line, '\n'))
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("applog: append to %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("applog: close %s: %w", path, cerr)
	}
	return nil
}
