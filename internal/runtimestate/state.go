// Package runtimestate persists the single "current recording" record as
// one JSON object, guarded by a sibling advisory lock file. Writes are
// atomic (temp file + fsync + rename) so readers never observe a partial
// write.
package runtimestate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// State is the persisted "current recording" record.
type State struct {
	Recording   bool      `json:"recording"`
	MeetingID   string    `json:"meeting_id"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	NotePath    string    `json:"note_path"`
	StartedAt   time.Time `json:"started_at"`
	SessionName string    `json:"session_name"`
}

// Store owns the state file and its sibling lock file.
type Store struct {
	path     string
	lockPath string
	clock    clock.Clock
}

// New creates a Store rooted at path, with the lock file living alongside
// it as path+".lock".
func New(path string, c clock.Clock) *Store {
	if c == nil {
		c = clock.System{}
	}
	return &Store{path: path, lockPath: path + ".lock", clock: c}
}

// Lock is a scoped handle on the exclusive advisory lock. Release is
// idempotent and safe to defer immediately after a successful Lock call.
type Lock struct {
	path string
}

// Lock acquires the exclusive lock by creating the lock file with O_EXCL;
// creation failing because the file already exists surfaces
// merr.KindStateLocked.
func (s *Store) Lock() (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, merr.New(merr.KindStateLocked, "a session is already being started or stopped")
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	_ = f.Close()
	return &Lock{path: s.lockPath}, nil
}

// Release deletes the lock file. It is safe to call multiple times and on
// every exit path, including after a failure under the lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Load reads the current state. A missing file is reported as a zero-value
// State with Recording=false, not an error.
func (s *Store) Load() (State, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("parse state: %w", err)
	}
	return st, nil
}

// Write persists state atomically: a temp file in the same directory is
// written, fsynced, then renamed over the target, so a reader never
// observes a partial write and a crash between write and rename leaves the
// previous file (or nothing) in place, never a truncated one.
func (s *Store) Write(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	// renameio.WriteFile writes to a temp file in the same directory,
	// fsyncs it, then renames it over the target, so readers never
	// observe a partial write.
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("commit state file: %w", err)
	}
	return nil
}

// Clear removes the state file, leaving no active session.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state: %w", err)
	}
	return nil
}

// IsStale reports whether the current state is a recording session whose
// started_at is older than maxAge.
func (s *Store) IsStale(maxAge time.Duration) (bool, error) {
	st, err := s.Load()
	if err != nil {
		return false, err
	}
	if !st.Recording {
		return false, nil
	}
	return s.clock.Now().Sub(st.StartedAt) > maxAge, nil
}
