package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/model"
	"github.com/muselabs/muselog/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	store               *storage.Store
	pipeline            *ingest.Pipeline
	logger              *slog.Logger
	startedAt           time.Time
	version             string
	maxRequestBodyBytes int64
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	Store               *storage.Store
	Pipeline            *ingest.Pipeline
	Logger              *slog.Logger
	Version             string
	MaxRequestBodyBytes int64
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(deps HandlersDeps) *Handlers {
	return &Handlers{
		store:               deps.Store,
		pipeline:            deps.Pipeline,
		logger:              deps.Logger,
		startedAt:           time.Now(),
		version:             deps.Version,
		maxRequestBodyBytes: deps.MaxRequestBodyBytes,
	}
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.CountRuns(r.Context())
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternalError, "store unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"runs":           runs,
	})
}

// HandleLogEvent handles POST /log: one event through the full pipeline.
func (h *Handlers) HandleLogEvent(w http.ResponseWriter, r *http.Request) {
	var evt model.Event
	if err := decodeJSON(r, &evt, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMalformedInput, "request body is not a valid event record")
		return
	}

	eventID, err := h.pipeline.Event(r.Context(), evt)
	if err != nil {
		h.logger.Error("ingest failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to store event")
		return
	}

	writeJSON(w, r, http.StatusAccepted, map[string]any{"event_id": eventID, "stored": 1})
}

// HandleIngestBatch handles POST /ingest: an NDJSON body, one record
// per line. Malformed lines are skipped and counted.
func (h *Handlers) HandleIngestBatch(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxRequestBodyBytes)
	res, err := h.pipeline.Stream(r.Context(), body)
	if err != nil {
		h.logger.Error("batch ingest failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to store batch")
		return
	}
	writeJSON(w, r, http.StatusAccepted, res)
}

// HandleNext handles GET /api/next: the earliest unlabeled run, or
// null when everything is labeled.
func (h *Handlers) HandleNext(w http.ResponseWriter, r *http.Request) {
	run, err := h.store.NextUnlabeled(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, r, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.logger.Error("next unlabeled failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to fetch next run")
		return
	}
	writeJSON(w, r, http.StatusOK, run)
}

// HandleLabel handles POST /api/label: applies one labeling action to
// an existing run, mutating only label/score fields.
func (h *Handlers) HandleLabel(w http.ResponseWriter, r *http.Request) {
	var req model.LabelRequest
	if err := decodeJSON(r, &req, h.maxRequestBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMalformedInput, "request body is not valid JSON")
		return
	}

	if req.EventID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingIdentifier, "event_id is required")
		return
	}
	if !model.ValidLabelAction(req.Action) {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeUnknownAction, "unrecognized action")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	err := h.store.ApplyLabel(r.Context(), req.EventID, req.Action, req.Score)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "no run with that event_id")
	case errors.Is(err, storage.ErrUnknownAction):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeUnknownAction, "unrecognized action")
	case errors.Is(err, storage.ErrMissingScore):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "score action requires a score")
	case err != nil:
		h.logger.Error("apply label failed", "error", err, "event_id", req.EventID)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to apply label")
	default:
		writeJSON(w, r, http.StatusOK, map[string]any{"event_id": req.EventID, "action": req.Action})
	}
}

// HandleReport handles GET /api/reports/{name}.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	report, err := h.store.RunReport(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("report failed", "error", err, "report", name)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to run report")
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
