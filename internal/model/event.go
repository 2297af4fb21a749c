// Package model defines the core domain types for muselog.
//
// Event is the wire shape of one ingestion record: a fixed set of optional
// groups rather than a dynamically-keyed map, so downstream code never
// guesses at field names. Run and Session mirror the database tables.
package model

import "encoding/json"

// Event is one raw ingestion record as received from a client.
// Every group is optional; Normalize substitutes empty groups so field
// access never dereferences nil.
type Event struct {
	EventID   string `json:"event_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	TS        string `json:"ts,omitempty"`

	UserInput    *UserInput    `json:"user_input,omitempty"`
	Model        *ModelInfo    `json:"model,omitempty"`
	Response     *ResponseInfo `json:"response,omitempty"`
	Observations *Observations `json:"observations,omitempty"`
	Labels       *Labels       `json:"labels,omitempty"`
	Metrics      *Metrics      `json:"metrics,omitempty"`
	Costing      *Costing      `json:"costing,omitempty"`
	Links        *Links        `json:"links,omitempty"`
	TaskContext  *TaskContext  `json:"task_context,omitempty"`
	Client       *ClientInfo   `json:"client,omitempty"`
}

// UserInput is the prompt group.
type UserInput struct {
	Text *string         `json:"text,omitempty"`
	Tags json.RawMessage `json:"tags,omitempty"`
}

// ModelInfo describes the model that produced the response.
type ModelInfo struct {
	Provider      *string  `json:"provider,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Mode          *string  `json:"mode,omitempty"`
	ContextTokens *int64   `json:"context_tokens,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
}

// ResponseInfo describes the model response.
type ResponseInfo struct {
	Text         *string `json:"text,omitempty"`
	RawTokens    *int64  `json:"raw_tokens,omitempty"`
	FinishReason *string `json:"finish_reason,omitempty"`
	LatencyMS    *int64  `json:"latency_ms,omitempty"`
}

// Observations holds caller-reported tri-state flags. A nil field means
// unknown, not false.
type Observations struct {
	ContainsCode *bool `json:"contains_code,omitempty"`
	HasCitations *bool `json:"has_citations,omitempty"`
	UIBroke      *bool `json:"ui_broke,omitempty"`
}

// Labels holds human quality judgments supplied at ingest time.
type Labels struct {
	Quality           *string `json:"quality,omitempty"`
	Actionable        *bool   `json:"actionable,omitempty"`
	HallucinationFlag *bool   `json:"hallucination_flag,omitempty"`
	Kept              *bool   `json:"kept,omitempty"`
}

// Metrics holds numeric quality scores.
type Metrics struct {
	ScoreOverall  *float64 `json:"score_overall,omitempty"`
	ScoreAccuracy *float64 `json:"score_accuracy,omitempty"`
	ScoreStyle    *float64 `json:"score_style,omitempty"`
	ScoreSpeed    *float64 `json:"score_speed,omitempty"`
}

// Costing holds token counts and the USD estimate.
type Costing struct {
	InputTokens  *int64   `json:"input_tokens,omitempty"`
	OutputTokens *int64   `json:"output_tokens,omitempty"`
	USDEstimate  *float64 `json:"usd_estimate,omitempty"`
}

// Links holds list-or-scalar link collections. RawMessage because callers
// send either a plain string or an array; canonicalization happens in
// the normalizer.
type Links struct {
	SourceURLs       json.RawMessage `json:"source_urls,omitempty"`
	AttachmentsSaved json.RawMessage `json:"attachments_saved,omitempty"`
}

// TaskContext carries session-level grouping hints.
type TaskContext struct {
	Topic  *string `json:"topic,omitempty"`
	Intent *string `json:"intent,omitempty"`
}

// ClientInfo identifies the emitting client. Currently free-form and
// unused by the relational schema; carried through to the append log.
type ClientInfo struct {
	App     *string `json:"app,omitempty"`
	Version *string `json:"version,omitempty"`
}
