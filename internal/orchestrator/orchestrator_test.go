package orchestrator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/merr"
	"github.com/mgunville/obsidian-meetings/internal/runtimestate"
)

type stubRecorder struct {
	startErr, stopErr   error
	startCalls, stopCalls []string
}

func (r *stubRecorder) Start(ctx context.Context, sessionName string) error {
	r.startCalls = append(r.startCalls, sessionName)
	return r.startErr
}

func (r *stubRecorder) Stop(ctx context.Context, sessionName string) error {
	r.stopCalls = append(r.stopCalls, sessionName)
	return r.stopErr
}

func newOrchestrator(t *testing.T, now time.Time) (*Orchestrator, *stubRecorder) {
	t.Helper()
	dir := t.TempDir()
	store := runtimestate.New(filepath.Join(dir, "state.json"), clock.Fixed{At: now})
	rec := &stubRecorder{}
	return New(store, rec, clock.Fixed{At: now}), rec
}

func teamsEvent() calendar.Event {
	return calendar.Event{
		Title: "Standup",
		URL:   "https://teams.microsoft.com/l/meetup-join/abc",
		Start: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC),
	}
}

func TestStartPersistsStateAndUsesPlatformSessionName(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 1, 0, 0, time.UTC)
	o, rec := newOrchestrator(t, now)

	res, err := o.Start(context.Background(), teamsEvent(), "m-abc123", "/vault/note.md")
	require.NoError(t, err)
	assert.True(t, res.State.Recording)
	assert.Equal(t, "Teams+Mic", res.State.SessionName)
	assert.False(t, res.FallbackUsed)
	assert.Equal(t, []string{"Teams+Mic"}, rec.startCalls)

	loaded, err := o.Store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.Recording)
	assert.Equal(t, "m-abc123", loaded.MeetingID)
}

func TestStartFailsWhenAlreadyRecording(t *testing.T) {
	now := time.Now()
	o, _ := newOrchestrator(t, now)

	_, err := o.Start(context.Background(), teamsEvent(), "m-1", "/vault/a.md")
	require.NoError(t, err)

	_, err = o.Start(context.Background(), teamsEvent(), "m-2", "/vault/b.md")
	require.Error(t, err)
	assert.True(t, merr.As(err, merr.KindAlreadyRecording))
}

func TestStopOnIdleSessionIsNoOpWarning(t *testing.T) {
	o, rec := newOrchestrator(t, time.Now())

	called := false
	res, err := o.Stop(context.Background(), func(StopPayload) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, res.Recording)
	assert.Equal(t, "No active recording", res.Warning)
	assert.False(t, called)
	assert.Empty(t, rec.stopCalls)
}

func TestStopEndsRecordingAndTriggersProcessing(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	o, rec := newOrchestrator(t, now)

	_, err := o.Start(context.Background(), teamsEvent(), "m-1", "/vault/a.md")
	require.NoError(t, err)

	var payload StopPayload
	res, err := o.Stop(context.Background(), func(p StopPayload) error {
		payload = p
		return nil
	})
	require.NoError(t, err)
	assert.False(t, res.Recording)
	assert.True(t, res.ProcessingTriggered)
	assert.Equal(t, "m-1", payload.MeetingID)
	assert.Equal(t, []string{"Teams+Mic"}, rec.stopCalls)

	loaded, err := o.Store.Load()
	require.NoError(t, err)
	assert.False(t, loaded.Recording)
}

func TestStopReportsTriggerFailureAsWarningNotError(t *testing.T) {
	o, _ := newOrchestrator(t, time.Now())
	_, err := o.Start(context.Background(), teamsEvent(), "m-1", "/vault/a.md")
	require.NoError(t, err)

	res, err := o.Stop(context.Background(), func(StopPayload) error {
		return assert.AnError
	})
	require.NoError(t, err)
	assert.False(t, res.ProcessingTriggered)
	assert.NotEmpty(t, res.Warning)
}

func TestStatusWhenIdleReturnsOnlyRecordingFalse(t *testing.T) {
	o, _ := newOrchestrator(t, time.Now())
	res, err := o.Status(time.Now())
	require.NoError(t, err)
	assert.False(t, res.Recording)
	assert.Nil(t, res.MeetingID)
	assert.Nil(t, res.DurationHuman)
}

func TestStatusWhenRecordingReportsDurationHuman(t *testing.T) {
	started := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	o, _ := newOrchestrator(t, started)

	_, err := o.Start(context.Background(), teamsEvent(), "m-1", "/vault/a.md")
	require.NoError(t, err)

	res, err := o.Status(started.Add(95 * time.Minute))
	require.NoError(t, err)
	require.True(t, res.Recording)
	assert.Equal(t, "1h 35m", *res.DurationHuman)
}
