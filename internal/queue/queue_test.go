package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

func seedQueue(t *testing.T, path string, meetingIDs ...string) {
	t.Helper()
	var lines []byte
	for _, id := range meetingIDs {
		data, err := json.Marshal(map[string]any{"meeting_id": id})
		require.NoError(t, err)
		lines = append(lines, data...)
		lines = append(lines, '\n')
	}
	require.NoError(t, os.WriteFile(path, lines, 0o644))
}

func readBackLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []map[string]any
	for _, line := range splitNonEmpty(raw) {
		var job map[string]any
		require.NoError(t, json.Unmarshal(line, &job))
		out = append(out, job)
	}
	return out
}

func splitNonEmpty(raw []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range raw {
		if b == '\n' {
			if i > start {
				lines = append(lines, raw[start:i])
			}
			start = i + 1
		}
	}
	return lines
}

func TestProcessJobsDeadLetterScenario(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "process_queue.jsonl")
	deadLetterPath := filepath.Join(dir, "process_queue.deadletter.jsonl")
	seedQueue(t, queuePath, "m-1", "m-2", "m-3")

	q := New(queuePath)
	result, err := q.ProcessJobs(func(job map[string]any) error {
		if job["meeting_id"] == "m-2" {
			return assert.AnError
		}
		return nil
	}, 10, FailureDeadLetter, deadLetterPath, func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Remaining)

	_, statErr := os.Stat(queuePath)
	assert.True(t, os.IsNotExist(statErr), "empty queue should be removed")

	dlRaw, err := os.ReadFile(deadLetterPath)
	require.NoError(t, err)
	lines := splitNonEmpty(dlRaw)
	require.Len(t, lines, 1)
	var rec deadLetterRecord
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "m-2", rec.Payload["meeting_id"])
}

func TestProcessJobsStopModeLeavesFailedJobAtHead(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "process_queue.jsonl")
	seedQueue(t, queuePath, "m-1", "m-2", "m-3")

	q := New(queuePath)
	result, err := q.ProcessJobs(func(job map[string]any) error {
		if job["meeting_id"] == "m-2" {
			return assert.AnError
		}
		return nil
	}, 10, FailureStop, "", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Remaining)
	assert.NotEmpty(t, result.FailureReason)

	remaining := readBackLines(t, queuePath)
	require.Len(t, remaining, 2)
	assert.Equal(t, "m-2", remaining[0]["meeting_id"])
	assert.Equal(t, "m-3", remaining[1]["meeting_id"])
}

func TestProcessJobsMissingFileIsEmptyResult(t *testing.T) {
	dir := t.TempDir()
	q := New(filepath.Join(dir, "missing.jsonl"))
	result, err := q.ProcessJobs(func(map[string]any) error { return nil }, 10, FailureStop, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestProcessJobsRespectsMaxJobs(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "process_queue.jsonl")
	seedQueue(t, queuePath, "m-1", "m-2", "m-3")

	q := New(queuePath)
	result, err := q.ProcessJobs(func(map[string]any) error { return nil }, 1, FailureStop, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 2, result.Remaining)
}

func TestProcessJobsLockContention(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "process_queue.jsonl")
	seedQueue(t, queuePath, "m-1")

	q := New(queuePath)
	held, err := q.acquireLock()
	require.NoError(t, err)
	defer held.release()

	_, err = q.ProcessJobs(func(map[string]any) error { return nil }, 10, FailureStop, "", nil)
	require.Error(t, err)
	assert.True(t, merr.As(err, merr.KindQueueLockError))
}

func TestEnqueueAppendsLine(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "process_queue.jsonl")
	q := New(queuePath)

	require.NoError(t, q.Enqueue(map[string]any{"meeting_id": "m-1"}))
	require.NoError(t, q.Enqueue(map[string]any{"meeting_id": "m-2"}))

	lines := readBackLines(t, queuePath)
	require.Len(t, lines, 2)
	assert.Equal(t, "m-1", lines[0]["meeting_id"])
	assert.Equal(t, "m-2", lines[1]["meeting_id"])
}
