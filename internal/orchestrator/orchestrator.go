// Package orchestrator wires the recorder capability, the runtime state
// store, and note creation into the three session lifecycle commands:
// start, stop, and status.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/capability"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/merr"
	"github.com/mgunville/obsidian-meetings/internal/runtimestate"
)

// Orchestrator owns the runtime state store and the recorder capability.
type Orchestrator struct {
	Store    *runtimestate.Store
	Recorder capability.Recorder
	Clock    clock.Clock
}

// New builds an Orchestrator, defaulting Clock to the system clock.
func New(store *runtimestate.Store, recorder capability.Recorder, c clock.Clock) *Orchestrator {
	if c == nil {
		c = clock.System{}
	}
	return &Orchestrator{Store: store, Recorder: recorder, Clock: c}
}

// NoteCreator creates (or locates) the note for a chosen event and returns
// its path. It is injected so Start-from-event does not depend on any
// concrete template renderer.
type NoteCreator func(ctx context.Context, event calendar.Event, meetingID string) (notePath string, err error)

// StartResult mirrors the persisted state right after a successful start.
type StartResult struct {
	State        runtimestate.State
	FallbackUsed bool
}

// Start begins a recording session for an already-selected event. If a
// session is already recording, it fails with merr.KindAlreadyRecording
// without touching the recorder.
func (o *Orchestrator) Start(ctx context.Context, event calendar.Event, meetingID, notePath string) (StartResult, error) {
	current, err := o.Store.Load()
	if err != nil {
		return StartResult{}, err
	}
	if current.Recording {
		return StartResult{}, merr.New(merr.KindAlreadyRecording,
			fmt.Sprintf("a recording for %q is already in progress", current.Title))
	}

	platform, _ := calendar.ResolvePlatform(event)
	sessionName, fallbackUsed := calendar.SessionNameFor(platform)

	lock, err := o.Store.Lock()
	if err != nil {
		return StartResult{}, err
	}
	defer lock.Release()

	if err := o.Recorder.Start(ctx, sessionName); err != nil {
		return StartResult{}, err
	}

	state := runtimestate.State{
		Recording:   true,
		MeetingID:   meetingID,
		Title:       event.Title,
		Platform:    string(platform),
		NotePath:    notePath,
		StartedAt:   o.Clock.Now(),
		SessionName: sessionName,
	}
	if err := o.Store.Write(state); err != nil {
		return StartResult{}, err
	}

	return StartResult{State: state, FallbackUsed: fallbackUsed}, nil
}

// StartFromEvent resolves an event via calSvc, creates its note via
// createNote, derives its meeting ID, then calls Start.
func (o *Orchestrator) StartFromEvent(
	ctx context.Context,
	calSvc *calendar.Service,
	selectFn func([]calendar.Event) (calendar.Event, bool),
	meetingIDFor func(calendar.Event) string,
	createNote NoteCreator,
) (StartResult, error) {
	event, _, err := calSvc.ResolveAndSelect(ctx, nil, nil, selectFn)
	if err != nil {
		return StartResult{}, err
	}

	meetingID := meetingIDFor(event)
	notePath, err := createNote(ctx, event, meetingID)
	if err != nil {
		return StartResult{}, fmt.Errorf("create note: %w", err)
	}

	return o.Start(ctx, event, meetingID, notePath)
}

// StopPayload is handed to the process trigger when a recording stops; it
// mirrors SessionState minus internals the pipeline does not need.
type StopPayload struct {
	MeetingID string
	NotePath  string
}

// StopResult is returned by Stop.
type StopResult struct {
	Recording           bool   `json:"recording"`
	Warning             string `json:"warning,omitempty"`
	ProcessingTriggered bool   `json:"processing_triggered"`
}

// Stop ends the current recording, if any, and then invokes
// processTrigger. Idle stop (no active session) returns
// {recording:false, warning:"..."} without error and never touches the
// recorder. A failure from processTrigger is reported as a warning but
// never reverses the stop that already happened.
func (o *Orchestrator) Stop(ctx context.Context, processTrigger func(StopPayload) error) (StopResult, error) {
	current, err := o.Store.Load()
	if err != nil {
		return StopResult{}, err
	}
	if !current.Recording {
		return StopResult{Recording: false, Warning: "No active recording"}, nil
	}

	lock, err := o.Store.Lock()
	if err != nil {
		return StopResult{}, err
	}
	defer lock.Release()

	if err := o.Recorder.Stop(ctx, current.SessionName); err != nil {
		return StopResult{}, err
	}
	if err := o.Store.Clear(); err != nil {
		return StopResult{}, err
	}

	result := StopResult{Recording: false, ProcessingTriggered: true}
	if processTrigger != nil {
		if err := processTrigger(StopPayload{MeetingID: current.MeetingID, NotePath: current.NotePath}); err != nil {
			result.ProcessingTriggered = false
			result.Warning = fmt.Sprintf("stopped, but failed to enqueue processing: %v", err)
		}
	}
	return result, nil
}

// StatusResult reports the current session state, with a human-readable
// duration when recording.
type StatusResult struct {
	Recording     bool       `json:"recording"`
	MeetingID     *string    `json:"meeting_id"`
	Title         *string    `json:"title"`
	Platform      *string    `json:"platform"`
	NotePath      *string    `json:"note_path"`
	StartedAt     *time.Time `json:"started_at"`
	DurationHuman *string    `json:"duration_human"`
}

// Status derives a StatusResult from the current SessionState. When
// recording=false every other field is nil.
func (o *Orchestrator) Status(now time.Time) (StatusResult, error) {
	st, err := o.Store.Load()
	if err != nil {
		return StatusResult{}, err
	}
	if !st.Recording {
		return StatusResult{Recording: false}, nil
	}

	duration := humanDuration(now.Sub(st.StartedAt))
	return StatusResult{
		Recording:     true,
		MeetingID:     &st.MeetingID,
		Title:         &st.Title,
		Platform:      &st.Platform,
		NotePath:      &st.NotePath,
		StartedAt:     &st.StartedAt,
		DurationHuman: &duration,
	}, nil
}

func humanDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	return fmt.Sprintf("%dh %dm", hours, rem)
}
