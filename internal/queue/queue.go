// Package queue implements the append-only JSONL job queue: a single
// exclusive-locked file processed line by line, with a stop-or-dead-letter
// failure policy per job. It mirrors the lock-then-read-modify-write shape
// internal/runtimestate.Store uses for the session state file, applied to a
// list of lines instead of one object.
package queue

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// FailureMode selects what happens to a job when the handler fails.
type FailureMode string

const (
	// FailureStop halts iteration, rewriting the queue with the failed job
	// still at its head along with everything after it.
	FailureStop FailureMode = "stop"
	// FailureDeadLetter records the failure and keeps iterating.
	FailureDeadLetter FailureMode = "dead_letter"
)

// Handler processes one job payload. Any returned error is treated as a
// job failure under the active FailureMode.
type Handler func(job map[string]any) error

// Result summarizes one process_jobs run.
type Result struct {
	Processed     int    `json:"processed"`
	Failed        int    `json:"failed"`
	Remaining     int    `json:"remaining"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// deadLetterRecord is one line appended to the dead-letter file.
type deadLetterRecord struct {
	FailedAt string         `json:"failed_at"`
	Error    string         `json:"error"`
	Payload  map[string]any `json:"payload"`
}

// Queue owns one queue file and its sibling lock file.
type Queue struct {
	path     string
	lockPath string
}

// New builds a Queue rooted at path, with the lock file living alongside it
// as path+".lock".
func New(path string) *Queue {
	return &Queue{path: path, lockPath: path + ".lock"}
}

// Enqueue appends one job object as a JSON line. It does not take the
// exclusive lock: callers that enqueue from the same process that runs
// ProcessJobs should serialize around their own call sites, since the
// "at most one worker" concurrency model has the queue's lock guard
// ProcessJobs's read-modify-write, not single appends.
func (q *Queue) Enqueue(job map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	f, err := os.OpenFile(q.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append job: %w", err)
	}
	return nil
}

type lock struct{ path string }

func (q *Queue) acquireLock() (*lock, error) {
	if err := os.MkdirAll(filepath.Dir(q.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	f, err := os.OpenFile(q.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, merr.New(merr.KindQueueLockError, "another process is already working the queue")
		}
		return nil, fmt.Errorf("create queue lock: %w", err)
	}
	_ = f.Close()
	return &lock{path: q.lockPath}, nil
}

func (l *lock) release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func readLines(path string) ([][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read queue: %w", err)
	}
	var lines [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte{}, line...))
	}
	return lines, scanner.Err()
}

func rewrite(path string, lines [][]byte) error {
	if len(lines) == 0 {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove empty queue: %w", err)
		}
		return nil
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("rewrite queue: %w", err)
	}
	return nil
}

func appendDeadLetter(path string, rec deadLetterRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dead-letter dir: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal dead-letter record: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open dead-letter file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append dead-letter record: %w", err)
	}
	return nil
}

// ProcessJobs acquires the exclusive lock, processes up to maxJobs lines in
// order through handler, and atomically rewrites the queue with whatever
// remains unconsumed. The lock is released on every exit path.
func (q *Queue) ProcessJobs(handler Handler, maxJobs int, mode FailureMode, deadLetterPath string, now func() time.Time) (Result, error) {
	l, err := q.acquireLock()
	if err != nil {
		return Result{}, err
	}
	defer l.release()

	lines, err := readLines(q.path)
	if err != nil {
		return Result{}, err
	}

	limit := maxJobs
	if limit <= 0 || limit > len(lines) {
		limit = len(lines)
	}

	result := Result{}
	consumed := make([]bool, len(lines))
	stoppedAt := -1

	for i := 0; i < limit; i++ {
		var job map[string]any
		if err := json.Unmarshal(lines[i], &job); err != nil {
			return Result{}, fmt.Errorf("parse queue line %d: %w", i, err)
		}

		if handlerErr := handler(job); handlerErr != nil {
			result.Failed++
			if mode == FailureStop {
				result.FailureReason = handlerErr.Error()
				stoppedAt = i
				break
			}
			if now == nil {
				now = time.Now
			}
			dlErr := appendDeadLetter(deadLetterPath, deadLetterRecord{
				FailedAt: now().UTC().Format(time.RFC3339),
				Error:    handlerErr.Error(),
				Payload:  job,
			})
			if dlErr != nil {
				return Result{}, dlErr
			}
			consumed[i] = true
			continue
		}

		consumed[i] = true
		result.Processed++
	}

	var remaining [][]byte
	if stoppedAt >= 0 {
		// Everything from the failed job onward, including lines past
		// limit that were never attempted, stays in the queue untouched.
		remaining = append(remaining, lines[stoppedAt:]...)
	} else {
		for i := 0; i < limit; i++ {
			if !consumed[i] {
				remaining = append(remaining, lines[i])
			}
		}
		for i := limit; i < len(lines); i++ {
			remaining = append(remaining, lines[i])
		}
	}

	if err := rewrite(q.path, remaining); err != nil {
		return Result{}, err
	}
	result.Remaining = len(remaining)
	return result, nil
}
