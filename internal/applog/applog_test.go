package applog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAppendCreatesDayFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	w := NewWriter(dir)
	w.now = fixedClock(time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC))

	require.NoError(t, w.Append(map[string]string{"event_id": "e1"}))

	data, err := os.ReadFile(filepath.Join(dir, "2026-09-01.ndjson"))
	require.NoError(t, err)
	assert.Equal(t, `{"event_id":"e1"}`+"\n", string(data))
}

func TestAppendOnlyGrows(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	w.now = fixedClock(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, w.Append(map[string]string{"event_id": "e1"}))
	require.NoError(t, w.Append(map[string]string{"event_id": "e2"}))

	data, err := os.ReadFile(filepath.Join(dir, "2026-09-01.ndjson"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "e1")
	assert.Contains(t, lines[1], "e2")

	for _, line := range lines {
		var obj map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &obj))
	}
}

func TestAppendRollsOverAtUTCMidnight(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	w.now = fixedClock(time.Date(2026, 9, 1, 23, 59, 59, 0, time.UTC))
	require.NoError(t, w.Append(map[string]string{"event_id": "e1"}))

	w.now = fixedClock(time.Date(2026, 9, 2, 0, 0, 1, 0, time.UTC))
	require.NoError(t, w.Append(map[string]string{"event_id": "e2"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"2026-09-01.ndjson", "2026-09-02.ndjson"}, names)
}

func TestConcurrentAppendsInterleaveWholeLines(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))

	// Two independent writers on the same directory, as two processes
	// sharing a log dir would be.
	w1 := NewWriter(dir)
	w1.now = clock
	w2 := NewWriter(dir)
	w2.now = clock

	const perWriter = 50
	var wg sync.WaitGroup
	for i, w := range []*Writer{w1, w2} {
		wg.Add(1)
		go func(id int, w *Writer) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				payload := map[string]string{
					"event_id": fmt.Sprintf("w%d-%d", id, j),
					"filler":   strings.Repeat("x", 200),
				}
				assert.NoError(t, w.Append(payload))
			}
		}(i, w)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "2026-09-01.ndjson"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2*perWriter)
	for _, line := range lines {
		var obj map[string]string
		require.NoError(t, json.Unmarshal([]byte(line), &obj), "torn line: %q", line)
		assert.NotEmpty(t, obj["event_id"])
	}
}

func TestAppendUnmarshalableEvent(t *testing.T) {
	w := NewWriter(t.TempDir())
	err := w.Append(make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal")
}
