package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muselabs/muselog/internal/model"
)

// NextUnlabeled returns the earliest-timestamped run that has no quality
// label and has not been marked kept. Returns ErrNotFound when every run
// is labeled.
func (s *Store) NextUnlabeled(ctx context.Context) (model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs
		WHERE label_quality IS NULL AND (label_kept IS NULL OR label_kept = 0)
		ORDER BY ts ASC
		LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("storage: next unlabeled: %w", err)
	}
	return run, nil
}

// ApplyLabel mutates only the label/score fields of an existing run.
// keep and junk set both label_kept and label_quality; the toggle
// actions flip a flag treating NULL as 0; score sets score_overall.
// Returns ErrMissingIdentifier for an empty event_id, ErrUnknownAction
// for an action outside the recognized set, ErrMissingScore for a
// score action without a value, and ErrNotFound when no run has the
// given event_id.
func (s *Store) ApplyLabel(ctx context.Context, eventID string, action model.LabelAction, score *float64) error {
	if eventID == "" {
		return ErrMissingIdentifier
	}

	var res sql.Result
	var err error
	switch action {
	case model.ActionKeep:
		res, err = s.db.ExecContext(ctx,
			`UPDATE runs SET label_kept = 1, label_quality = 'good' WHERE event_id = ?`, eventID)
	case model.ActionJunk:
		res, err = s.db.ExecContext(ctx,
			`UPDATE runs SET label_kept = 0, label_quality = 'bad' WHERE event_id = ?`, eventID)
	case model.ActionToggleHallucination:
		res, err = s.db.ExecContext(ctx,
			`UPDATE runs
			 SET label_hallucination = CASE WHEN COALESCE(label_hallucination, 0) = 1 THEN 0 ELSE 1 END
			 WHERE event_id = ?`, eventID)
	case model.ActionToggleActionable:
		res, err = s.db.ExecContext(ctx,
			`UPDATE runs
			 SET label_actionable = CASE WHEN COALESCE(label_actionable, 0) = 1 THEN 0 ELSE 1 END
			 WHERE event_id = ?`, eventID)
	case model.ActionScore:
		if score == nil {
			return ErrMissingScore
		}
		res, err = s.db.ExecContext(ctx,
			`UPDATE runs SET score_overall = ? WHERE event_id = ?`, *score, eventID)
	default:
		return ErrUnknownAction
	}
	if err != nil {
		return fmt.Errorf("storage: apply label %s to %s: %w", action, eventID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: apply label rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
