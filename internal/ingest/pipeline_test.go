package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muselabs/muselog/internal/applog"
	"github.com/muselabs/muselog/internal/ingest"
	"github.com/muselabs/muselog/internal/model"
	"github.com/muselabs/muselog/internal/testutil"
)

func TestRecordMinimalEvent(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	eventID, err := p.Record(ctx, []byte(`{"model":{"provider":"acme","name":"x1"},"response":{"text":"hi"}}`))
	require.NoError(t, err)
	require.NotEmpty(t, eventID)

	run, err := store.GetRun(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, run.Provider)
	assert.Equal(t, "acme", *run.Provider)
	require.NotNil(t, run.ModelName)
	assert.Equal(t, "x1", *run.ModelName)
	require.NotNil(t, run.RespText)
	assert.Equal(t, "hi", *run.RespText)
	assert.Nil(t, run.LabelQuality)

	// The synthesized session exists too.
	sess, err := store.GetSession(ctx, run.SessionID)
	require.NoError(t, err)
	assert.Equal(t, run.SessionID, sess.SessionID)

	sessions, err := store.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sessions)
}

func TestRecordMalformed(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	// A top-level null decodes as a no-op in encoding/json; it must be
	// rejected here, not stored as a fully-defaulted run.
	for _, raw := range []string{`{"model":`, `null`, `[{"event_id":"e1"}]`} {
		_, err := p.Record(ctx, []byte(raw))
		require.ErrorIs(t, err, ingest.ErrMalformedInput, "input %q", raw)
	}

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStreamSkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	input := strings.Join([]string{
		`{"event_id":"e1","session_id":"s1","model":{"provider":"acme"}}`,
		`this line is not json`,
		``,
		`{"event_id":"e2","session_id":"s1","model":{"provider":"acme"}}`,
	}, "\n")

	res, err := p.Stream(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 1, res.Skipped)

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStreamResendReplacesRun(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	_, err := p.Record(ctx, []byte(`{"event_id":"e1","session_id":"s1","response":{"text":"first"}}`))
	require.NoError(t, err)
	_, err = p.Record(ctx, []byte(`{"event_id":"e1","session_id":"s1","response":{"text":"second"}}`))
	require.NoError(t, err)

	n, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	run, err := store.GetRun(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, run.RespText)
	assert.Equal(t, "second", *run.RespText)
}

func TestFileSingleObject(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	path := filepath.Join(t.TempDir(), "one.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"event_id": "e1",
		"user_input": {"text": "hello"}
	}`), 0o644))

	res, err := p.File(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, model.IngestResult{Stored: 1}, res)

	run, err := store.GetRun(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, run.InputText)
	assert.Equal(t, "hello", *run.InputText)
}

func TestFileNDJSONFallback(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	p := ingest.New(store, nil, testutil.TestLogger())

	path := filepath.Join(t.TempDir(), "batch.ndjson")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"event_id":"e1"}`+"\n"+`{"event_id":"e2"}`+"\n",
	), 0o644))

	res, err := p.File(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, model.IngestResult{Stored: 2, Skipped: 0}, res)
}

func TestEventWritesAppendLog(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewTestStore(t)
	dir := t.TempDir()
	p := ingest.New(store, applog.NewWriter(dir), testutil.TestLogger())

	eventID, err := p.Record(ctx, []byte(`{"model":{"provider":"acme"}}`))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".ndjson"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"event_id":"`+eventID+`"`)
	assert.Contains(t, line, `"provider":"acme"`)
	// The audit line mirrors what the caller sent: groups that were
	// absent on the wire do not appear as empty objects.
	assert.NotContains(t, line, `"user_input"`)
	assert.NotContains(t, line, `"labels"`)
}
