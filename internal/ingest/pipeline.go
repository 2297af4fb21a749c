package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muselabs/muselog/internal/applog"
	"github.com/muselabs/muselog/internal/model"
	"github.com/muselabs/muselog/internal/storage"
)

// Pipeline drives events through normalize → upsert → append log.
type Pipeline struct {
	store  *storage.Store
	log    *applog.Writer // nil disables the append log
	logger *slog.Logger
}

// New creates a Pipeline. logWriter may be nil to disable append logging.
func New(store *storage.Store, logWriter *applog.Writer, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: store, log: logWriter, logger: logger}
}

// Event ingests one already-parsed event: normalize, upsert, append log.
// Returns the event_id under which the run was stored. Store failures
// propagate; append log failures are reported at Warn and do not undo
// the store write.
func (p *Pipeline) Event(ctx context.Context, evt model.Event) (string, error) {
	n := Normalize(evt)

	if err := p.store.UpsertRun(ctx, n.Run, n.Seed); err != nil {
		return "", err
	}

	if p.log != nil {
		if err := p.log.Append(n.Event); err != nil {
			p.logger.Warn("append log write failed", "event_id", n.Run.EventID, "error", err)
		}
	}
	return n.Run.EventID, nil
}

// Record ingests one raw record. A record that cannot be parsed fails
// with ErrMalformedInput; nothing is stored.
func (p *Pipeline) Record(ctx context.Context, raw []byte) (string, error) {
	evt, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return p.Event(ctx, evt)
}

// Stream ingests newline-delimited records from r. Blank lines are
// ignored. A malformed line is skipped and counted, not fatal: the
// policy here is to maximize successful ingestion rather than abort
// the batch. Store failures are fatal and abort the remaining stream.
func (p *Pipeline) Stream(ctx context.Context, r io.Reader) (model.IngestResult, error) {
	var res model.IngestResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		evt, err := Parse(line)
		if err != nil {
			res.Skipped++
			p.logger.Warn("skipping malformed record", "line", lineNo, "error", err)
			continue
		}

		if _, err := p.Event(ctx, evt); err != nil {
			return res, fmt.Errorf("ingest: line %d: %w", lineNo, err)
		}
		res.Stored++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("ingest: read stream: %w", err)
	}
	return res, nil
}

// File ingests from path, or from stdin when path is "-". The input is
// treated as a single JSON record first; if that parse fails, it falls
// back to newline-delimited records. This mirrors how batch files are
// produced: either one event object or an NDJSON dump.
func (p *Pipeline) File(ctx context.Context, path string) (model.IngestResult, error) {
	if path == "-" {
		return p.Stream(ctx, os.Stdin)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.IngestResult{}, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	if evt, err := Parse(bytes.TrimSpace(data)); err == nil {
		if _, err := p.Event(ctx, evt); err != nil {
			return model.IngestResult{}, err
		}
		return model.IngestResult{Stored: 1}, nil
	}

	return p.Stream(ctx, bytes.NewReader(data))
}
