// Package ingest normalizes raw events and drives them through the
// store and the append log.
package ingest

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/muselabs/muselog/internal/model"
	"github.com/muselabs/muselog/internal/storage"
)

// ErrMalformedInput is returned when a record cannot be parsed as a
// structured event. Missing optional data is never an error.
var ErrMalformedInput = errors.New("ingest: malformed input")

// tsLayout is ISO-8601 UTC with a trailing Z, microsecond precision.
const tsLayout = "2006-01-02T15:04:05.000000Z"

// Normalized is a raw event after default synthesis and flattening.
// Event is the augmented record (identifiers filled in) that goes to
// the append log; Run is the flat row for the store.
type Normalized struct {
	Event model.Event
	Run   model.Run
	Seed  storage.SessionSeed
}

// Normalize fills required defaults on evt and flattens it to a Run.
// Every schema field of the result is populated with a value or an
// explicit nil; no group access can fail downstream.
//
// Defaults: ts is set to the current UTC time; event_id gets a fresh
// unique token; session_id combines a compact UTC timestamp with an
// 8-character token slice so sessionless events still group uniquely.
func Normalize(evt model.Event) Normalized {
	if evt.TS == "" {
		evt.TS = time.Now().UTC().Format(tsLayout)
	}
	if evt.EventID == "" {
		evt.EventID = newToken()
	}
	if evt.SessionID == "" {
		evt.SessionID = time.Now().UTC().Format("20060102T150405") + "-" + newToken()[:8]
	}

	// The append log gets the record as the caller sent it, plus the
	// synthesized identifiers. Captured before group substitution so
	// absent groups stay absent on the audit line.
	logEvent := evt

	// Substitute empty groups for absent ones.
	if evt.UserInput == nil {
		evt.UserInput = &model.UserInput{}
	}
	if evt.Model == nil {
		evt.Model = &model.ModelInfo{}
	}
	if evt.Response == nil {
		evt.Response = &model.ResponseInfo{}
	}
	if evt.Observations == nil {
		evt.Observations = &model.Observations{}
	}
	if evt.Labels == nil {
		evt.Labels = &model.Labels{}
	}
	if evt.Metrics == nil {
		evt.Metrics = &model.Metrics{}
	}
	if evt.Costing == nil {
		evt.Costing = &model.Costing{}
	}
	if evt.Links == nil {
		evt.Links = &model.Links{}
	}
	if evt.TaskContext == nil {
		evt.TaskContext = &model.TaskContext{}
	}
	if evt.Client == nil {
		evt.Client = &model.ClientInfo{}
	}

	run := model.Run{
		EventID:   evt.EventID,
		SessionID: evt.SessionID,
		TS:        evt.TS,

		InputText: evt.UserInput.Text,
		Tags:      canonicalList(evt.UserInput.Tags),

		Provider:      evt.Model.Provider,
		ModelName:     evt.Model.Name,
		Mode:          evt.Model.Mode,
		ContextTokens: evt.Model.ContextTokens,
		Temperature:   evt.Model.Temperature,

		RespText:     evt.Response.Text,
		RespTokens:   evt.Response.RawTokens,
		FinishReason: evt.Response.FinishReason,
		LatencyMS:    evt.Response.LatencyMS,

		ContainsCode: evt.Observations.ContainsCode,
		HasCitations: evt.Observations.HasCitations,
		UIBroke:      evt.Observations.UIBroke,

		LabelQuality:       evt.Labels.Quality,
		LabelActionable:    evt.Labels.Actionable,
		LabelHallucination: evt.Labels.HallucinationFlag,
		LabelKept:          evt.Labels.Kept,

		ScoreOverall:  evt.Metrics.ScoreOverall,
		ScoreAccuracy: evt.Metrics.ScoreAccuracy,
		ScoreStyle:    evt.Metrics.ScoreStyle,
		ScoreSpeed:    evt.Metrics.ScoreSpeed,

		InputTokens:  evt.Costing.InputTokens,
		OutputTokens: evt.Costing.OutputTokens,
		USDEstimate:  evt.Costing.USDEstimate,

		SourceURLs:       canonicalList(evt.Links.SourceURLs),
		AttachmentsSaved: canonicalList(evt.Links.AttachmentsSaved),
	}

	return Normalized{
		Event: logEvent,
		Run:   run,
		Seed: storage.SessionSeed{
			Topic:  evt.TaskContext.Topic,
			Intent: evt.TaskContext.Intent,
		},
	}
}

// Parse decodes one raw record into an Event. Any input that is not a
// JSON object fails with ErrMalformedInput. The object check is
// explicit because json.Unmarshal treats a top-level null as a no-op,
// which would otherwise pass a phantom empty record through.
func Parse(raw []byte) (model.Event, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return model.Event{}, fmt.Errorf("%w: not a JSON object", ErrMalformedInput)
	}
	var evt model.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return evt, nil
}

// canonicalList converts a list-or-scalar JSON value to its stored
// form: a source string passes through verbatim, null stays nil, and
// any other value (array, object, number) is serialized to compact
// canonical JSON.
func canonicalList(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return &val
	default:
		out, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		s := string(out)
		return &s
	}
}

// newToken returns a collision-resistant opaque hex token.
func newToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
