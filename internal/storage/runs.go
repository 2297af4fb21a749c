package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muselabs/muselog/internal/model"
)

// SessionSeed is what UpsertRun needs to create the parent session row
// when one does not exist yet. Topic and intent come from the event's
// task_context group; started_at is the run timestamp.
type SessionSeed struct {
	Topic  *string
	Intent *string
}

// UpsertRun writes run and its parent session in one transaction: the
// session row is created with insert-if-absent semantics, then the run
// row is written with full-replace semantics. If a run with this
// event_id already exists its entire content is replaced; fields absent
// from run become NULL, they are not merged from the prior row. A
// resent event is authoritative — callers that want labels preserved
// must resend the full event.
func (s *Store) UpsertRun(ctx context.Context, run model.Run, seed SessionSeed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin upsert tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Insert-if-absent: concurrent ingestion of two events sharing a new
	// session_id must not error or produce duplicate rows.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (session_id, started_at, topic, intent, notes)
		 VALUES (?, ?, ?, ?, NULL)`,
		run.SessionID, run.TS, seed.Topic, seed.Intent,
	); err != nil {
		return fmt.Errorf("storage: ensure session %s: %w", run.SessionID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (
		   event_id, session_id, ts,
		   input_text, tags,
		   provider, model_name, mode, context_tokens, temperature,
		   resp_text, resp_tokens, finish_reason, latency_ms,
		   contains_code, has_citations, ui_broke,
		   label_quality, label_actionable, label_hallucination, label_kept,
		   score_overall, score_accuracy, score_style, score_speed,
		   input_tokens, output_tokens, usd_estimate,
		   source_urls, attachments_saved
		 ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.EventID, run.SessionID, run.TS,
		run.InputText, run.Tags,
		run.Provider, run.ModelName, run.Mode, run.ContextTokens, run.Temperature,
		run.RespText, run.RespTokens, run.FinishReason, run.LatencyMS,
		boolArg(run.ContainsCode), boolArg(run.HasCitations), boolArg(run.UIBroke),
		run.LabelQuality, boolArg(run.LabelActionable), boolArg(run.LabelHallucination), boolArg(run.LabelKept),
		run.ScoreOverall, run.ScoreAccuracy, run.ScoreStyle, run.ScoreSpeed,
		run.InputTokens, run.OutputTokens, run.USDEstimate,
		run.SourceURLs, run.AttachmentsSaved,
	); err != nil {
		return fmt.Errorf("storage: upsert run %s: %w", run.EventID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit upsert: %w", err)
	}
	return nil
}

// GetRun returns the run with the given event_id, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, eventID string) (model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE event_id = ?`, eventID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("storage: get run %s: %w", eventID, err)
	}
	return run, nil
}

// GetSession returns the session row for sessionID, or ErrNotFound.
func (s *Store) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, started_at, topic, intent, notes FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&sess.SessionID, &sess.StartedAt, &sess.Topic, &sess.Intent, &sess.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("storage: get session %s: %w", sessionID, err)
	}
	return sess, nil
}

// CountRuns returns the total number of stored runs.
func (s *Store) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count runs: %w", err)
	}
	return n, nil
}

// CountSessions returns the total number of stored sessions.
func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count sessions: %w", err)
	}
	return n, nil
}

const runColumns = `event_id, session_id, ts,
	input_text, tags,
	provider, model_name, mode, context_tokens, temperature,
	resp_text, resp_tokens, finish_reason, latency_ms,
	contains_code, has_citations, ui_broke,
	label_quality, label_actionable, label_hallucination, label_kept,
	score_overall, score_accuracy, score_style, score_speed,
	input_tokens, output_tokens, usd_estimate,
	source_urls, attachments_saved`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var r model.Run
	var containsCode, hasCitations, uiBroke *int64
	var actionable, hallucination, kept *int64
	err := row.Scan(
		&r.EventID, &r.SessionID, &r.TS,
		&r.InputText, &r.Tags,
		&r.Provider, &r.ModelName, &r.Mode, &r.ContextTokens, &r.Temperature,
		&r.RespText, &r.RespTokens, &r.FinishReason, &r.LatencyMS,
		&containsCode, &hasCitations, &uiBroke,
		&r.LabelQuality, &actionable, &hallucination, &kept,
		&r.ScoreOverall, &r.ScoreAccuracy, &r.ScoreStyle, &r.ScoreSpeed,
		&r.InputTokens, &r.OutputTokens, &r.USDEstimate,
		&r.SourceURLs, &r.AttachmentsSaved,
	)
	if err != nil {
		return model.Run{}, err
	}
	r.ContainsCode = boolFromInt(containsCode)
	r.HasCitations = boolFromInt(hasCitations)
	r.UIBroke = boolFromInt(uiBroke)
	r.LabelActionable = boolFromInt(actionable)
	r.LabelHallucination = boolFromInt(hallucination)
	r.LabelKept = boolFromInt(kept)
	return r, nil
}

// boolArg maps a tri-state bool to its stored form: NULL, 0 or 1.
func boolArg(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return int64(1)
	}
	return int64(0)
}

func boolFromInt(v *int64) *bool {
	if v == nil {
		return nil
	}
	b := *v != 0
	return &b
}
