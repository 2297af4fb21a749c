package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/server"
	"github.com/muselabs/muselog/internal/storage"
	"github.com/muselabs/muselog/internal/testutil"
)

func newTestServer(t *testing.T) (*server.Server, *storage.Store) {
	t.Helper()
	store := testutil.NewTestStore(t)
	logger := testutil.TestLogger()
	srv := server.New(server.ServerConfig{
		Store:               store,
		Pipeline:            ingest.New(store, nil, logger),
		Logger:              logger,
		Port:                0,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		Version:             "test",
		MaxRequestBodyBytes: 1 << 20,
	})
	return srv, store
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.NotEmpty(t, env.Meta.RequestID)

	var health map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.EqualValues(t, 0, health["runs"])
}

func TestLogEventThenLabelFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	// Ingest one event.
	rec := doRequest(t, h, http.MethodPost, "/log",
		`{"model":{"provider":"acme","name":"x1"},"response":{"text":"hi"}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var logged struct {
		EventID string `json:"event_id"`
		Stored  int    `json:"stored"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &logged))
	require.NotEmpty(t, logged.EventID)
	assert.Equal(t, 1, logged.Stored)

	// It shows up in the labeling queue.
	rec = doRequest(t, h, http.MethodGet, "/api/next", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var next struct {
		EventID  string  `json:"event_id"`
		Provider *string `json:"provider"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &next))
	assert.Equal(t, logged.EventID, next.EventID)
	require.NotNil(t, next.Provider)
	assert.Equal(t, "acme", *next.Provider)

	// Label it kept; the queue drains.
	rec = doRequest(t, h, http.MethodPost, "/api/label",
		`{"event_id":"`+logged.EventID+`","action":"keep"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(decodeEnvelope(t, rec).Data))
}

func TestLogEventMalformed(t *testing.T) {
	srv, store := newTestServer(t)

	for _, body := range []string{`{"model":`, `null`, `[]`, `"text"`} {
		rec := doRequest(t, srv.Handler(), http.MethodPost, "/log", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, "MALFORMED_INPUT", env.Error.Code)
	}

	n, err := store.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestBatch(t *testing.T) {
	srv, store := newTestServer(t)

	body := `{"event_id":"e1"}` + "\n" + `garbage` + "\n" + `{"event_id":"e2"}`
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/ingest", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var res struct {
		Stored  int `json:"stored"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &res))
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 1, res.Skipped)

	n, err := store.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLabelErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing event_id", `{"action":"keep"}`, http.StatusBadRequest, "MISSING_IDENTIFIER"},
		{"unknown action", `{"event_id":"e1","action":"promote"}`, http.StatusBadRequest, "UNKNOWN_ACTION"},
		{"score without value", `{"event_id":"e1","action":"score"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no such run", `{"event_id":"missing","action":"keep"}`, http.StatusNotFound, "NOT_FOUND"},
		{"bad json", `{`, http.StatusBadRequest, "MALFORMED_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/label", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestReportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/reports/winners_by_topic", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Name    string     `json:"name"`
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &report))
	assert.Equal(t, "winners_by_topic", report.Name)
	assert.NotEmpty(t, report.Columns)
	assert.Empty(t, report.Rows)

	rec = doRequest(t, h, http.MethodGet, "/api/reports/nonexistent", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-123", decodeEnvelope(t, rec).Meta.RequestID)
}

func TestUIServedAtRoot(t *testing.T) {
	store := testutil.NewTestStore(t)
	logger := testutil.TestLogger()
	srv := server.New(server.ServerConfig{
		Store:               store,
		Pipeline:            ingest.New(store, nil, logger),
		Logger:              logger,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		Version:             "test",
		MaxRequestBodyBytes: 1 << 20,
		UIFS: fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("<!doctype html><title>labeler</title>")},
		},
	})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "labeler")
}
