package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// cannedQueries is the fixed set of named aggregate reports. Reports are
// read-only and run concurrently with the writer under WAL.
var cannedQueries = map[string]string{
	"winners_by_topic": `
SELECT s.topic,
       r.provider || '/' || r.model_name AS model,
       ROUND(AVG(r.score_overall), 3) AS avg_score,
       COUNT(*) AS n
FROM runs r
JOIN sessions s USING (session_id)
GROUP BY s.topic, model
HAVING n >= 5
ORDER BY avg_score DESC, n DESC`,

	"score_per_1k_tokens": `
SELECT r.provider || '/' || r.model_name AS model,
       ROUND(AVG(r.score_overall / NULLIF((r.input_tokens + r.output_tokens) / 1000.0, 0)), 3) AS score_per_k,
       COUNT(*) AS n
FROM runs r
GROUP BY model
HAVING n >= 5
ORDER BY score_per_k DESC`,

	"latency_vs_quality": `
SELECT r.provider || '/' || r.model_name AS model,
       ROUND(AVG(r.latency_ms), 0) AS avg_ms,
       ROUND(AVG(r.score_overall), 3) AS avg_score,
       COUNT(*) AS n
FROM runs r
GROUP BY model
HAVING n >= 5
ORDER BY avg_score DESC`,

	"hallucination_rate": `
SELECT r.provider,
       SUM(COALESCE(r.label_hallucination, 0)) AS hallucinations,
       COUNT(*) AS n,
       ROUND(100.0 * SUM(COALESCE(r.label_hallucination, 0)) / COUNT(*), 2) AS pct
FROM runs r
GROUP BY r.provider
ORDER BY pct DESC`,
}

// ReportNames returns the canned query names, sorted.
func ReportNames() []string {
	names := make([]string, 0, len(cannedQueries))
	for name := range cannedQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report is the result of one canned query: column names plus rows of
// stringified cells (NULL rendered as empty string).
type Report struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RunReport executes the canned query with the given name. Unknown names
// error with the available set so callers can self-correct.
func (s *Store) RunReport(ctx context.Context, name string) (Report, error) {
	query, ok := cannedQueries[name]
	if !ok {
		return Report{}, fmt.Errorf("storage: unknown report %q (available: %s): %w",
			name, strings.Join(ReportNames(), ", "), ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Report{}, fmt.Errorf("storage: report %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Report{}, fmt.Errorf("storage: report %s columns: %w", name, err)
	}

	report := Report{Name: name, Columns: cols}
	for rows.Next() {
		cells := make([]*string, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Report{}, fmt.Errorf("storage: report %s scan: %w", name, err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			if c != nil {
				row[i] = *c
			}
		}
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Report{}, fmt.Errorf("storage: report %s rows: %w", name, err)
	}
	return report, nil
}
