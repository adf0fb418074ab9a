package runtimestate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgunville/obsidian-meetings/internal/clock"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "current.json"), nil)
	st, err := store.Load()
	require.NoError(t, err)
	assert.False(t, st.Recording)
}

func TestWriteThenLoadRoundTrips(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "current.json"), nil)
	want := State{
		Recording:   true,
		MeetingID:   "m-abc1234567",
		Title:       "Weekly Sync",
		Platform:    "teams",
		NotePath:    "/vault/meetings/note.md",
		StartedAt:   time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC),
		SessionName: "Teams+Mic",
	}
	require.NoError(t, store.Write(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Recording, got.Recording)
	assert.Equal(t, want.MeetingID, got.MeetingID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
}

func TestClearRemovesState(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "current.json"), nil)
	require.NoError(t, store.Write(State{Recording: true, MeetingID: "m-abc1234567"}))
	require.NoError(t, store.Clear())

	got, err := store.Load()
	require.NoError(t, err)
	assert.False(t, got.Recording)
}

func TestLockIsExclusive(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "current.json"), nil)
	lock, err := store.Lock()
	require.NoError(t, err)

	_, err = store.Lock()
	require.Error(t, err)

	require.NoError(t, lock.Release())

	lock2, err := store.Lock()
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	store := New(filepath.Join(t.TempDir(), "current.json"), clock.Fixed{At: now})

	require.NoError(t, store.Write(State{Recording: true, StartedAt: now.Add(-2 * time.Hour)}))
	stale, err := store.IsStale(1 * time.Hour)
	require.NoError(t, err)
	assert.True(t, stale)

	require.NoError(t, store.Write(State{Recording: true, StartedAt: now.Add(-10 * time.Minute)}))
	stale, err = store.IsStale(1 * time.Hour)
	require.NoError(t, err)
	assert.False(t, stale)

	require.NoError(t, store.Write(State{Recording: false}))
	stale, err = store.IsStale(1 * time.Hour)
	require.NoError(t, err)
	assert.False(t, stale)
}
