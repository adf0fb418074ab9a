// Package pipeline drives a single job from resolved audio through
// transcription, summarization, note patching, and re-encoding. It is the
// one place that composes the capability interfaces (transcribe,
// summarize, convert) with notepatcher, and is meant to be called once per
// job by the Job Queue's handler.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/capability"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/merr"
	"github.com/mgunville/obsidian-meetings/internal/notepatcher"
)

// canonicalAudioExtensions are extensions the converter never needs to
// touch because they are already an acceptable archival format.
var canonicalAudioExtensions = map[string]bool{
	".m4a": true,
	".mp3": true,
}

// Job is one unit of post-recording work.
type Job struct {
	MeetingID string `json:"meeting_id"`
	NotePath  string `json:"note_path"`
	WavPath   string `json:"wav_path,omitempty"`
}

// Config carries the two roots run_processing validates paths against.
type Config struct {
	VaultRoot      string
	RecordingsRoot string
}

// ProcessResult is the record appended to the processed-jobs log, with
// audio_converted/changed_regions detail beyond the bare job identity.
type ProcessResult struct {
	MeetingID        string    `json:"meeting_id"`
	NotePath         string    `json:"note_path"`
	TranscriptPath   string    `json:"transcript_path"`
	AudioPath        string    `json:"audio_path"`
	ReusedTranscript bool      `json:"reused_transcript"`
	ReusedSummary    bool      `json:"reused_summary"`
	ProcessedAt      time.Time `json:"processed_at"`
	AudioConverted   bool      `json:"audio_converted"`
	ChangedRegions   []string  `json:"changed_regions"`
}

// Pipeline holds the injected capabilities plus the processed-jobs log
// path and config roots.
type Pipeline struct {
	Config           Config
	Transcriber      capability.Transcriber
	Summarizer       capability.Summarizer
	AudioConverter   capability.AudioConverter
	ProcessedJobsLog string
	Clock            clock.Clock
}

// New builds a Pipeline, defaulting Clock to the system clock.
func New(cfg Config, transcriber capability.Transcriber, summarizer capability.Summarizer, converter capability.AudioConverter, processedJobsLog string, c clock.Clock) *Pipeline {
	if c == nil {
		c = clock.System{}
	}
	return &Pipeline{
		Config:           cfg,
		Transcriber:      transcriber,
		Summarizer:       summarizer,
		AudioConverter:   converter,
		ProcessedJobsLog: processedJobsLog,
		Clock:            c,
	}
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RunProcessing runs one job end to end and appends its ProcessResult to
// the processed-jobs log on success.
func (p *Pipeline) RunProcessing(ctx context.Context, job Job) (ProcessResult, error) {
	if !withinRoot(p.Config.VaultRoot, job.NotePath) {
		return ProcessResult{}, merr.New(merr.KindInvalidPath,
			fmt.Sprintf("note_path %q is outside the vault root", job.NotePath))
	}
	if job.WavPath != "" && !withinRoot(p.Config.RecordingsRoot, job.WavPath) {
		return ProcessResult{}, merr.New(merr.KindInvalidPath,
			fmt.Sprintf("wav_path %q is outside the recordings root", job.WavPath))
	}

	wavPath, err := p.resolveInputAudio(job)
	if err != nil {
		return ProcessResult{}, err
	}

	transcriptPath := filepath.Join(p.Config.RecordingsRoot, job.MeetingID+".txt")
	reusedTranscript, err := p.ensureTranscript(ctx, wavPath, transcriptPath)
	if err != nil {
		return ProcessResult{}, err
	}

	summary, err := p.Summarizer.Summarize(ctx, transcriptPath)
	if err != nil {
		return ProcessResult{}, err
	}

	noteContent, err := os.ReadFile(job.NotePath)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("read note: %w", err)
	}

	updates := map[string]string{
		"minutes":      summary.Minutes,
		"decisions":    renderBulletList(summary.Decisions, false),
		"action_items": renderBulletList(summary.ActionItems, true),
	}
	result, err := notepatcher.Patch(job.NotePath, updates, false)
	if err != nil {
		return ProcessResult{}, err
	}
	changedRegions := append([]string{}, result.ChangedRegions...)

	finalAudioPath, audioConverted, err := p.convertAudio(ctx, wavPath, job.MeetingID)
	if err != nil {
		return ProcessResult{}, err
	}

	transcriptText, err := os.ReadFile(transcriptPath)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("read transcript: %w", err)
	}
	finalUpdates := map[string]string{
		"transcript": renderTranscriptBlock(string(transcriptText)),
	}
	if strings.Contains(string(noteContent), "<!-- REFERENCES_START -->") {
		finalUpdates["references"] = renderReferences(finalAudioPath, transcriptPath, true)
	}
	finalResult, err := notepatcher.Patch(job.NotePath, finalUpdates, false)
	if err != nil {
		return ProcessResult{}, err
	}
	changedRegions = append(changedRegions, finalResult.ChangedRegions...)

	processResult := ProcessResult{
		MeetingID:        job.MeetingID,
		NotePath:         job.NotePath,
		TranscriptPath:   transcriptPath,
		AudioPath:        finalAudioPath,
		ReusedTranscript: reusedTranscript,
		ReusedSummary:    summary.Reused,
		ProcessedAt:      p.Clock.Now(),
		AudioConverted:   audioConverted,
		ChangedRegions:   changedRegions,
	}
	if err := p.appendProcessResult(processResult); err != nil {
		return ProcessResult{}, err
	}
	return processResult, nil
}

func (p *Pipeline) resolveInputAudio(job Job) (string, error) {
	candidate := job.WavPath
	if candidate == "" {
		candidate = filepath.Join(p.Config.RecordingsRoot, job.MeetingID+".wav")
	}
	if _, err := os.Stat(candidate); err != nil {
		return "", merr.New(merr.KindMissingInput,
			fmt.Sprintf("no input audio found for %s at %s", job.MeetingID, candidate))
	}
	return candidate, nil
}

func (p *Pipeline) ensureTranscript(ctx context.Context, wavPath, transcriptPath string) (bool, error) {
	if info, err := os.Stat(transcriptPath); err == nil && info.Size() > 0 {
		return true, nil
	}
	if err := p.Transcriber.Transcribe(ctx, wavPath, transcriptPath); err != nil {
		return false, err
	}
	return false, nil
}

// convertAudio re-encodes wavPath to MP3 unless its extension already
// implies the canonical artifact, in which case it is kept as-is.
func (p *Pipeline) convertAudio(ctx context.Context, wavPath, meetingID string) (string, bool, error) {
	ext := strings.ToLower(filepath.Ext(wavPath))
	if canonicalAudioExtensions[ext] {
		return wavPath, false, nil
	}
	mp3Path := filepath.Join(p.Config.RecordingsRoot, meetingID+".mp3")
	if err := p.AudioConverter.Convert(ctx, wavPath, mp3Path); err != nil {
		return "", false, err
	}
	return mp3Path, true, nil
}

func (p *Pipeline) appendProcessResult(result ProcessResult) error {
	if p.ProcessedJobsLog == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.ProcessedJobsLog), 0o755); err != nil {
		return fmt.Errorf("create processed-jobs dir: %w", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal processed-jobs record: %w", err)
	}
	f, err := os.OpenFile(p.ProcessedJobsLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open processed-jobs log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append processed-jobs record: %w", err)
	}
	return nil
}

func renderBulletList(items []string, checkbox bool) string {
	if len(items) == 0 {
		return "> _Pending_"
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if checkbox {
			fmt.Fprintf(&b, "- [ ] %s", item)
		} else {
			fmt.Fprintf(&b, "- %s", item)
		}
	}
	return b.String()
}

func renderTranscriptBlock(transcript string) string {
	return "```\n" + strings.TrimRight(transcript, "\n") + "\n```"
}

// renderReferences renders the references region: the audio and transcript
// paths followed by a status line, the only part of the format the system
// contract fixes.
func renderReferences(audioPath, transcriptPath string, complete bool) string {
	status := "partial"
	if complete {
		status = "complete"
	}
	return fmt.Sprintf("- Audio: `%s`\n- Transcript: `%s`\nstatus: %s", audioPath, transcriptPath, status)
}
