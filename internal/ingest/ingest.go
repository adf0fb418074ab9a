// Package ingest promotes loose audio files into the same job queue a live
// recording session enqueues into: infer each file's start time, optionally
// match it to a calendar event, create its note, optionally rename
// siblings to the canonical <meeting_id> stem, then enqueue or process it
// immediately. Ingest-Watch repeats Backfill.Run on an interval, skipping
// files a JSONL log already marked ingested.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/identity"
	"github.com/mgunville/obsidian-meetings/internal/pipeline"
	"github.com/mgunville/obsidian-meetings/internal/queue"
	"github.com/mgunville/obsidian-meetings/internal/selector"
)

// TimeSource names which rule produced an inferred start time; Backfill
// records it in each FileResult. There is no separate unmatched-manifest
// export.
type TimeSource string

const (
	SourceVoiceMemoStem   TimeSource = "voice_memo_stem"
	SourceFilenameCompact TimeSource = "filename_compact"
	SourceBirthtime       TimeSource = "birthtime"
	SourceMtime           TimeSource = "mtime"
)

var (
	voiceMemoStemPattern   = regexp.MustCompile(`(\d{8}) (\d{6})`)
	filenameCompactPattern = regexp.MustCompile(`(\d{8})[_-](\d{4})`)
)

// InferredTime is a file's derived start time plus the rule that produced
// it.
type InferredTime struct {
	At     time.Time
	Source TimeSource
}

// InferStartTime tries, in order: a voice-memo-style "YYYYMMDD HHMMSS" stem
// in voicememoTZ; a compact "YYYYMMDD[_-]HHMM" stem in filenameTZ; the
// file's birth time; its modification time.
func InferStartTime(path string, voicememoTZ, filenameTZ *time.Location) (InferredTime, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if m := voiceMemoStemPattern.FindStringSubmatch(stem); m != nil {
		if t, err := time.ParseInLocation("20060102 150405", m[1]+" "+m[2], orUTC(voicememoTZ)); err == nil {
			return InferredTime{At: t, Source: SourceVoiceMemoStem}, nil
		}
	}
	if m := filenameCompactPattern.FindStringSubmatch(stem); m != nil {
		if t, err := time.ParseInLocation("20060102 1504", m[1]+" "+m[2], orUTC(filenameTZ)); err == nil {
			return InferredTime{At: t, Source: SourceFilenameCompact}, nil
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return InferredTime{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if birth, ok := birthTime(info); ok {
		return InferredTime{At: birth, Source: SourceBirthtime}, nil
	}
	return InferredTime{At: info.ModTime(), Source: SourceMtime}, nil
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// birthTime reports a file's creation time when the platform exposes one.
// The standard library has no portable accessor for it, so this always
// reports false, falling through to mtime.
func birthTime(info os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}

// EventLookup resolves candidate events around a timestamp, used for
// --match-calendar / --review-calendar.
type EventLookup func(ctx context.Context, around time.Time, window time.Duration) ([]calendar.Event, error)

// ReviewDecision is what a human (or a scripted stand-in) decided for one
// file under --review-calendar.
type ReviewDecision struct {
	Chosen     *calendar.Event
	AdHocTitle string
	Skip       bool
}

// ReviewFunc presents the auto-match plus candidates for one file and
// returns the operator's decision. The CLI layer supplies the actual
// prompting; this package only defines the contract.
type ReviewFunc func(file string, autoMatch *calendar.Event, candidates []calendar.Event) (ReviewDecision, error)

// NoteCreator creates (or previews) the note for a resolved event or an
// ad-hoc title and returns its path. inferredStart is the file's inferred
// start time (InferredTime.At), used to name the note when no event was
// matched.
type NoteCreator func(ctx context.Context, event *calendar.Event, adHocTitle string, meetingID string, inferredStart time.Time, preview bool) (notePath string, err error)

// Options configures one Backfill.Run or Watch poll.
type Options struct {
	RecordingsRoot   string
	Extensions       []string // defaults to {"wav"}
	Files            []string // optional explicit restriction, absolute paths
	MatchCalendar    bool
	ReviewCalendar   bool
	Rename           bool
	ProcessNow       bool
	DryRun           bool
	CandidateCount   int // K candidates surfaced under --review-calendar
	MatchWindow      time.Duration
	VoiceMemoTZ      *time.Location
	FilenameTZ       *time.Location
}

// FileResult records the outcome for one discovered file.
type FileResult struct {
	Path         string     `json:"path"`
	MeetingID    string     `json:"meeting_id"`
	NotePath     string     `json:"note_path"`
	TimeSource   TimeSource `json:"time_source"`
	MatchedEvent string     `json:"matched_event,omitempty"`
	Skipped      bool       `json:"skipped"`
	Enqueued     bool       `json:"enqueued"`
	Processed    bool       `json:"processed"`
	Renamed      bool       `json:"renamed"`
}

// Backfill wires together the collaborators a single ingest pass needs.
type Backfill struct {
	Queue       *queue.Queue
	Pipeline    *pipeline.Pipeline
	EventLookup EventLookup
	Review      ReviewFunc
	CreateNote  NoteCreator
	Clock       clock.Clock
}

// New builds a Backfill, defaulting Clock to the system clock.
func New(q *queue.Queue, p *pipeline.Pipeline, lookup EventLookup, review ReviewFunc, createNote NoteCreator, c clock.Clock) *Backfill {
	if c == nil {
		c = clock.System{}
	}
	return &Backfill{Queue: q, Pipeline: p, EventLookup: lookup, Review: review, CreateNote: createNote, Clock: c}
}

func discoverFiles(opts Options) ([]string, error) {
	if len(opts.Files) > 0 {
		files := append([]string{}, opts.Files...)
		sort.Strings(files)
		return files, nil
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{"wav"}
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	var files []string
	err := filepath.WalkDir(opts.RecordingsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if allowed[ext] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk recordings root: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Run performs one full backfill pass over opts and returns one FileResult
// per discovered file.
func (b *Backfill) Run(ctx context.Context, opts Options) ([]FileResult, error) {
	files, err := discoverFiles(opts)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		result, err := b.processOne(ctx, path, opts)
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (b *Backfill) processOne(ctx context.Context, path string, opts Options) (FileResult, error) {
	inferred, err := InferStartTime(path, opts.VoiceMemoTZ, opts.FilenameTZ)
	if err != nil {
		return FileResult{}, err
	}
	result := FileResult{Path: path, TimeSource: inferred.Source}

	var chosen *calendar.Event
	var candidates []calendar.Event

	if opts.MatchCalendar && b.EventLookup != nil {
		candidates, err = b.EventLookup(ctx, inferred.At, opts.MatchWindow)
		if err != nil {
			return FileResult{}, err
		}
		if ev, ok := selector.NearestTo(candidates, inferred.At, opts.MatchWindow); ok {
			chosen = &ev
		}
	}

	adHocTitle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if opts.ReviewCalendar && b.Review != nil {
		k := opts.CandidateCount
		if k <= 0 || k > len(candidates) {
			k = len(candidates)
		}
		decision, err := b.Review(path, chosen, candidates[:k])
		if err != nil {
			return FileResult{}, err
		}
		if decision.Skip {
			result.Skipped = true
			return result, nil
		}
		if decision.Chosen != nil {
			chosen = decision.Chosen
		} else if decision.AdHocTitle != "" {
			chosen = nil
			adHocTitle = decision.AdHocTitle
		}
	}

	var title string
	if chosen != nil {
		title = chosen.Title
		result.MatchedEvent = chosen.Title
	} else {
		title = adHocTitle
	}
	meetingID := identity.MeetingID(title, inferred.At.Format(time.RFC3339))
	result.MeetingID = meetingID

	if b.CreateNote != nil {
		notePath, err := b.CreateNote(ctx, chosen, adHocTitle, meetingID, inferred.At, opts.DryRun)
		if err != nil {
			return FileResult{}, fmt.Errorf("create note: %w", err)
		}
		result.NotePath = notePath
	}

	finalPath := path
	if opts.Rename && chosen != nil && !opts.DryRun {
		renamed, err := renameToMeetingID(path, meetingID)
		if err != nil {
			return FileResult{}, fmt.Errorf("rename: %w", err)
		}
		finalPath = renamed
		result.Renamed = true
	}

	if opts.DryRun {
		return result, nil
	}

	job := pipeline.Job{MeetingID: meetingID, NotePath: result.NotePath, WavPath: finalPath}
	if opts.ProcessNow {
		if b.Pipeline == nil {
			return FileResult{}, fmt.Errorf("process-now requested but no pipeline configured")
		}
		if _, err := b.Pipeline.RunProcessing(ctx, job); err != nil {
			return FileResult{}, err
		}
		result.Processed = true
		return result, nil
	}

	if err := b.Queue.Enqueue(map[string]any{
		"job_id":     uuid.New().String(),
		"meeting_id": job.MeetingID,
		"note_path":  job.NotePath,
		"wav_path":   job.WavPath,
	}); err != nil {
		return FileResult{}, err
	}
	result.Enqueued = true
	return result, nil
}

// renameToMeetingID renames path and any sibling .txt/.mp3 file sharing its
// stem to <meetingID><ext>, refusing to overwrite an existing destination.
func renameToMeetingID(path, meetingID string) (string, error) {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	newPath := filepath.Join(dir, meetingID+filepath.Ext(path))
	if err := renameNoOverwrite(path, newPath); err != nil {
		return "", err
	}

	for _, ext := range []string{".txt", ".mp3"} {
		sibling := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(sibling); err != nil {
			continue
		}
		if err := renameNoOverwrite(sibling, filepath.Join(dir, meetingID+ext)); err != nil {
			return "", err
		}
	}
	return newPath, nil
}

func renameNoOverwrite(oldPath, newPath string) error {
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("refusing to overwrite existing %s", newPath)
	}
	return os.Rename(oldPath, newPath)
}
