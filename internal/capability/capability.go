// Package capability defines the narrow interfaces every external
// collaborator enters meetingctl through (recorder, transcriber,
// summarizer, audio converter), plus subprocess-backed default
// implementations and dry-run stand-ins selected by MEETINGCTL_*_DRY_RUN.
// Each capability is constructed at the edge and passed down; there are no
// global singletons.
package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// Recorder starts and stops a named audio-recording session.
type Recorder interface {
	Start(ctx context.Context, sessionName string) error
	Stop(ctx context.Context, sessionName string) error
}

// Summary is the structured result a Summarizer produces.
type Summary struct {
	Minutes     string   `json:"minutes"`
	Decisions   []string `json:"decisions"`
	ActionItems []string `json:"action_items"`
	Reused      bool     `json:"reused,omitempty"` // advisory: true when the summary came from a cached prior run
}

// Transcriber converts a WAV recording into a transcript file (plus
// whatever sibling .srt/.json files the underlying tool produces).
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, transcriptPath string) error
}

// Summarizer turns a transcript into structured minutes/decisions/actions.
type Summarizer interface {
	Summarize(ctx context.Context, transcriptPath string) (Summary, error)
}

// AudioConverter re-encodes a WAV recording to MP3 and is responsible for
// deleting the WAV on success.
type AudioConverter interface {
	Convert(ctx context.Context, wavPath, mp3Path string) error
}

const helperTimeout = 15 * time.Second

// ExecRecorder drives an external recorder binary synchronously.
type ExecRecorder struct{ Command string }

func (r ExecRecorder) Start(ctx context.Context, sessionName string) error {
	return run(ctx, 0, r.Command, "start", sessionName)
}

func (r ExecRecorder) Stop(ctx context.Context, sessionName string) error {
	return run(ctx, 0, r.Command, "stop", sessionName)
}

// ExecTranscriber shells out to a WAV -> transcript.txt (+ .srt/.json)
// command-line transcriber.
type ExecTranscriber struct{ Command string }

func (t ExecTranscriber) Transcribe(ctx context.Context, wavPath, transcriptPath string) error {
	if err := run(ctx, helperTimeout, t.Command, wavPath, transcriptPath); err != nil {
		return merr.Wrap(merr.KindTranscriptionError, "transcription failed", err)
	}
	return nil
}

// ExecSummarizer shells out to a transcript -> JSON
// {minutes,decisions,action_items[,reused]} summarizer. A response that
// fails schema validation triggers exactly one repair attempt (the command
// is invoked again with "--reformat", asking it to reissue strict JSON);
// if that also fails to parse, the result is best-effort coerced rather
// than erroring the job.
type ExecSummarizer struct{ Command string }

func (s ExecSummarizer) Summarize(ctx context.Context, transcriptPath string) (Summary, error) {
	out, err := output(ctx, helperTimeout, s.Command, transcriptPath)
	if err != nil {
		return Summary{}, err
	}
	if summary, ok := parseSummary(out); ok {
		return summary, nil
	}

	repaired, err := output(ctx, helperTimeout, s.Command, transcriptPath, "--reformat")
	if err == nil {
		if summary, ok := parseSummary(repaired); ok {
			return summary, nil
		}
		out = repaired
	}
	return bestEffortSummary(out), nil
}

// parseSummary reports whether raw is a well-formed Summary JSON object.
func parseSummary(raw []byte) (Summary, bool) {
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return Summary{}, false
	}
	return summary, true
}

// bestEffortSummary coerces unparseable summarizer output into a Summary
// by treating the raw text as the minutes, with empty decisions and
// action items, rather than failing the job.
func bestEffortSummary(raw []byte) Summary {
	return Summary{Minutes: strings.TrimSpace(string(raw))}
}

// ExecAudioConverter shells out to a WAV -> MP3 re-encoder, which is
// expected to delete the source WAV on success.
type ExecAudioConverter struct{ Command string }

func (c ExecAudioConverter) Convert(ctx context.Context, wavPath, mp3Path string) error {
	return run(ctx, helperTimeout, c.Command, wavPath, mp3Path)
}

func run(ctx context.Context, timeout time.Duration, command string, args ...string) error {
	_, err := output(ctx, timeout, command, args...)
	return err
}

func output(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, merr.Wrap(merr.KindOperationalError,
			fmt.Sprintf("%s: %s", command, stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

// DryRunRecorder satisfies Recorder without touching any external process,
// selected when MEETINGCTL_RECORDER_DRY_RUN is set.
type DryRunRecorder struct{}

func (DryRunRecorder) Start(ctx context.Context, sessionName string) error { return nil }
func (DryRunRecorder) Stop(ctx context.Context, sessionName string) error  { return nil }

// DryRunTranscriber writes a placeholder transcript instead of invoking a
// real transcriber, selected when MEETINGCTL_TRANSCRIBE_DRY_RUN is set.
type DryRunTranscriber struct{}

func (DryRunTranscriber) Transcribe(ctx context.Context, wavPath, transcriptPath string) error {
	return os.WriteFile(transcriptPath, []byte("[dry-run transcript]\n"), 0o644)
}

// DryRunAudioConverter copies the WAV path's existence into an empty MP3
// placeholder and removes the WAV, selected when
// MEETINGCTL_CONVERT_DRY_RUN is set.
type DryRunAudioConverter struct{}

func (DryRunAudioConverter) Convert(ctx context.Context, wavPath, mp3Path string) error {
	if err := os.WriteFile(mp3Path, nil, 0o644); err != nil {
		return err
	}
	return os.Remove(wavPath)
}

// RecorderFor returns ExecRecorder or DryRunRecorder based on env.
func RecorderFor(command string) Recorder {
	if os.Getenv("MEETINGCTL_RECORDER_DRY_RUN") != "" {
		return DryRunRecorder{}
	}
	return ExecRecorder{Command: command}
}

// TranscriberFor returns ExecTranscriber or DryRunTranscriber based on env.
func TranscriberFor(command string) Transcriber {
	if os.Getenv("MEETINGCTL_TRANSCRIBE_DRY_RUN") != "" {
		return DryRunTranscriber{}
	}
	return ExecTranscriber{Command: command}
}

// AudioConverterFor returns ExecAudioConverter or DryRunAudioConverter based
// on env.
func AudioConverterFor(command string) AudioConverter {
	if os.Getenv("MEETINGCTL_CONVERT_DRY_RUN") != "" {
		return DryRunAudioConverter{}
	}
	return ExecAudioConverter{Command: command}
}

// DryRunSummarizer returns a fixed best-effort summary instead of invoking
// a real summarizer, selected when MEETINGCTL_SUMMARIZE_DRY_RUN is set.
type DryRunSummarizer struct{}

func (DryRunSummarizer) Summarize(ctx context.Context, transcriptPath string) (Summary, error) {
	return Summary{Minutes: "[dry-run summary]"}, nil
}

// SummarizerFor returns ExecSummarizer or DryRunSummarizer based on env.
func SummarizerFor(command string) Summarizer {
	if os.Getenv("MEETINGCTL_SUMMARIZE_DRY_RUN") != "" {
		return DryRunSummarizer{}
	}
	return ExecSummarizer{Command: command}
}
