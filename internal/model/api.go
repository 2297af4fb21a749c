package model

import (
	"fmt"
	"time"
)

// LabelAction is one of the recognized labeling operations.
type LabelAction string

const (
	ActionKeep                LabelAction = "keep"
	ActionJunk                LabelAction = "junk"
	ActionToggleHallucination LabelAction = "toggle_hallucination"
	ActionToggleActionable    LabelAction = "toggle_actionable"
	ActionScore               LabelAction = "score"
)

// ValidLabelAction reports whether a is in the recognized action set.
func ValidLabelAction(a LabelAction) bool {
	switch a {
	case ActionKeep, ActionJunk, ActionToggleHallucination, ActionToggleActionable, ActionScore:
		return true
	}
	return false
}

// LabelRequest is the body of POST /api/label.
type LabelRequest struct {
	EventID string      `json:"event_id"`
	Action  LabelAction `json:"action"`
	Score   *float64    `json:"score,omitempty"`
}

// IngestResult reports the outcome of a batch ingestion.
type IngestResult struct {
	Stored  int `json:"stored"`
	Skipped int `json:"skipped"`
}

// APIResponse is the standard success envelope.
type APIResponse struct {
	Data any          `json:"data"`
	Meta ResponseMeta `json:"meta"`
}

// APIError is the standard error envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResponseMeta is attached to every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes returned in the API error envelope.
const (
	ErrCodeMalformedInput    = "MALFORMED_INPUT"
	ErrCodeMissingIdentifier = "MISSING_IDENTIFIER"
	ErrCodeUnknownAction     = "UNKNOWN_ACTION"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validate checks a label request before it reaches storage.
func (r LabelRequest) Validate() error {
	if r.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if !ValidLabelAction(r.Action) {
		return fmt.Errorf("unrecognized action %q", r.Action)
	}
	if r.Action == ActionScore && r.Score == nil {
		return fmt.Errorf("action %q requires a score", r.Action)
	}
	return nil
}
