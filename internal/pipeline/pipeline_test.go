package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgunville/obsidian-meetings/internal/capability"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/merr"
)

const noteTemplate = `---
title: Standup
---

<!-- MINUTES_START -->
old minutes
<!-- MINUTES_END -->

<!-- DECISIONS_START -->
<!-- DECISIONS_END -->

<!-- ACTION_ITEMS_START -->
<!-- ACTION_ITEMS_END -->

<!-- TRANSCRIPT_START -->
<!-- TRANSCRIPT_END -->

<!-- REFERENCES_START -->
<!-- REFERENCES_END -->
`

type stubTranscriber struct {
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, wavPath, transcriptPath string) error {
	s.calls++
	return os.WriteFile(transcriptPath, []byte("hello world"), 0o644)
}

type stubSummarizer struct {
	summary capability.Summary
	err     error
}

func (s stubSummarizer) Summarize(ctx context.Context, transcriptPath string) (capability.Summary, error) {
	return s.summary, s.err
}

type stubConverter struct {
	calls int
}

func (s *stubConverter) Convert(ctx context.Context, wavPath, mp3Path string) error {
	s.calls++
	if err := os.WriteFile(mp3Path, []byte("mp3"), 0o644); err != nil {
		return err
	}
	return os.Remove(wavPath)
}

func setup(t *testing.T) (dir string, notePath, wavPath string) {
	t.Helper()
	dir = t.TempDir()
	vault := filepath.Join(dir, "vault")
	recordings := filepath.Join(dir, "recordings")
	require.NoError(t, os.MkdirAll(vault, 0o755))
	require.NoError(t, os.MkdirAll(recordings, 0o755))

	notePath = filepath.Join(vault, "note.md")
	require.NoError(t, os.WriteFile(notePath, []byte(noteTemplate), 0o644))

	wavPath = filepath.Join(recordings, "m-1.wav")
	require.NoError(t, os.WriteFile(wavPath, []byte("audio"), 0o644))
	return dir, notePath, wavPath
}

func TestRunProcessingEndToEnd(t *testing.T) {
	dir, notePath, _ := setup(t)
	transcriber := &stubTranscriber{}
	converter := &stubConverter{}
	summarizer := stubSummarizer{summary: capability.Summary{
		Minutes:     "We discussed things.",
		Decisions:   []string{"Ship it"},
		ActionItems: []string{"Write docs"},
	}}

	processedLog := filepath.Join(dir, "processed_jobs.jsonl")
	p := New(Config{VaultRoot: filepath.Join(dir, "vault"), RecordingsRoot: filepath.Join(dir, "recordings")},
		transcriber, summarizer, converter, processedLog, clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})

	result, err := p.RunProcessing(context.Background(), Job{MeetingID: "m-1", NotePath: notePath})
	require.NoError(t, err)
	assert.False(t, result.ReusedTranscript)
	assert.True(t, result.AudioConverted)
	assert.Equal(t, 1, transcriber.calls)
	assert.Equal(t, 1, converter.calls)

	noteContent, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(noteContent), "We discussed things.")
	assert.Contains(t, string(noteContent), "- Ship it")
	assert.Contains(t, string(noteContent), "- [ ] Write docs")
	assert.Contains(t, string(noteContent), "status: complete")
	assert.Contains(t, string(noteContent), "hello world")

	logRaw, err := os.ReadFile(processedLog)
	require.NoError(t, err)
	var logged ProcessResult
	require.NoError(t, json.Unmarshal(logRaw[:len(logRaw)-1], &logged))
	assert.Equal(t, "m-1", logged.MeetingID)
}

func TestRunProcessingReusesExistingTranscript(t *testing.T) {
	dir, notePath, _ := setup(t)
	transcriber := &stubTranscriber{}
	converter := &stubConverter{}
	summarizer := stubSummarizer{summary: capability.Summary{Minutes: "m"}}

	transcriptPath := filepath.Join(dir, "recordings", "m-1.txt")
	require.NoError(t, os.WriteFile(transcriptPath, []byte("already transcribed"), 0o644))

	p := New(Config{VaultRoot: filepath.Join(dir, "vault"), RecordingsRoot: filepath.Join(dir, "recordings")},
		transcriber, summarizer, converter, "", nil)

	result, err := p.RunProcessing(context.Background(), Job{MeetingID: "m-1", NotePath: notePath})
	require.NoError(t, err)
	assert.True(t, result.ReusedTranscript)
	assert.Equal(t, 0, transcriber.calls)
}

func TestRunProcessingKeepsM4AWithoutReencode(t *testing.T) {
	dir, notePath, _ := setup(t)
	recordings := filepath.Join(dir, "recordings")
	m4aPath := filepath.Join(recordings, "m-2.m4a")
	require.NoError(t, os.WriteFile(m4aPath, []byte("audio"), 0o644))

	transcriber := &stubTranscriber{}
	converter := &stubConverter{}
	summarizer := stubSummarizer{summary: capability.Summary{Minutes: "m"}}

	p := New(Config{VaultRoot: filepath.Join(dir, "vault"), RecordingsRoot: recordings},
		transcriber, summarizer, converter, "", nil)

	result, err := p.RunProcessing(context.Background(), Job{MeetingID: "m-2", NotePath: notePath, WavPath: m4aPath})
	require.NoError(t, err)
	assert.False(t, result.AudioConverted)
	assert.Equal(t, m4aPath, result.AudioPath)
	assert.Equal(t, 0, converter.calls)
}

func TestRunProcessingMissingInputFails(t *testing.T) {
	dir, notePath, _ := setup(t)
	p := New(Config{VaultRoot: filepath.Join(dir, "vault"), RecordingsRoot: filepath.Join(dir, "recordings")},
		&stubTranscriber{}, stubSummarizer{}, &stubConverter{}, "", nil)

	_, err := p.RunProcessing(context.Background(), Job{MeetingID: "does-not-exist", NotePath: notePath})
	require.Error(t, err)
	assert.True(t, merr.As(err, merr.KindMissingInput))
}

func TestRunProcessingRejectsNotePathOutsideVault(t *testing.T) {
	dir, _, _ := setup(t)
	p := New(Config{VaultRoot: filepath.Join(dir, "vault"), RecordingsRoot: filepath.Join(dir, "recordings")},
		&stubTranscriber{}, stubSummarizer{}, &stubConverter{}, "", nil)

	outside := filepath.Join(dir, "outside.md")
	require.NoError(t, os.WriteFile(outside, []byte(noteTemplate), 0o644))

	_, err := p.RunProcessing(context.Background(), Job{MeetingID: "m-1", NotePath: outside})
	require.Error(t, err)
	assert.True(t, merr.As(err, merr.KindInvalidPath))
}
