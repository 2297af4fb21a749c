package model

// Session groups related runs (one conversation or task). Created
// implicitly by the first run that references it; never updated after.
type Session struct {
	SessionID string  `json:"session_id"`
	StartedAt *string `json:"started_at"`
	Topic     *string `json:"topic"`
	Intent    *string `json:"intent"`
	Notes     *string `json:"notes"`
}

// Run is one recorded model invocation, flattened to the relational
// schema. Nil pointer fields are stored and returned as NULL; boolean
// flags are tri-state (nil = unknown, never coerced to false).
type Run struct {
	EventID   string `json:"event_id"`
	SessionID string `json:"session_id"`
	TS        string `json:"ts"`

	InputText *string `json:"input_text"`
	Tags      *string `json:"tags"`

	Provider      *string  `json:"provider"`
	ModelName     *string  `json:"model_name"`
	Mode          *string  `json:"mode"`
	ContextTokens *int64   `json:"context_tokens"`
	Temperature   *float64 `json:"temperature"`

	RespText     *string `json:"resp_text"`
	RespTokens   *int64  `json:"resp_tokens"`
	FinishReason *string `json:"finish_reason"`
	LatencyMS    *int64  `json:"latency_ms"`

	ContainsCode *bool `json:"contains_code"`
	HasCitations *bool `json:"has_citations"`
	UIBroke      *bool `json:"ui_broke"`

	LabelQuality       *string `json:"label_quality"`
	LabelActionable    *bool   `json:"label_actionable"`
	LabelHallucination *bool   `json:"label_hallucination"`
	LabelKept          *bool   `json:"label_kept"`

	ScoreOverall  *float64 `json:"score_overall"`
	ScoreAccuracy *float64 `json:"score_accuracy"`
	ScoreStyle    *float64 `json:"score_style"`
	ScoreSpeed    *float64 `json:"score_speed"`

	InputTokens  *int64   `json:"input_tokens"`
	OutputTokens *int64   `json:"output_tokens"`
	USDEstimate  *float64 `json:"usd_estimate"`

	SourceURLs       *string `json:"source_urls"`
	AttachmentsSaved *string `json:"attachments_saved"`
}
