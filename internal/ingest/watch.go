package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch repeats Backfill.Run on an interval, skipping files younger than
// MinAge and files already recorded in IngestedLog.
type Watch struct {
	Backfill    *Backfill
	IngestedLog string
	MinAge      time.Duration
}

func loadIngested(path string) (map[string]bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("read ingested-files log: %w", err)
	}
	seen := map[string]bool{}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec struct {
			Path string `json:"path"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		seen[rec.Path] = true
	}
	return seen, scanner.Err()
}

func appendIngested(path, ingestedPath string) error {
	if err := os.MkdirAll(filepath.Dir(ingestedPath), 0o755); err != nil {
		return fmt.Errorf("create ingested-files dir: %w", err)
	}
	data, err := json.Marshal(struct {
		Path string `json:"path"`
	}{Path: path})
	if err != nil {
		return fmt.Errorf("marshal ingested-files record: %w", err)
	}
	f, err := os.OpenFile(ingestedPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ingested-files log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append ingested-files record: %w", err)
	}
	return nil
}

// Poll runs a single scan pass: files younger than MinAge are skipped in
// place (not recorded as ingested, so a later pass reconsiders them);
// files already in IngestedLog are skipped permanently; the rest are
// handed to Backfill.Run one at a time and, on any non-skip outcome,
// recorded as ingested.
func (w *Watch) Poll(ctx context.Context, opts Options) ([]FileResult, error) {
	seen, err := loadIngested(w.IngestedLog)
	if err != nil {
		return nil, err
	}

	files, err := discoverFiles(opts)
	if err != nil {
		return nil, err
	}

	now := w.Backfill.Clock.Now()
	var results []FileResult
	for _, path := range files {
		if seen[path] {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if w.MinAge > 0 && now.Sub(info.ModTime()) < w.MinAge {
			continue
		}

		fileOpts := opts
		fileOpts.Files = []string{path}
		fileOpts.RecordingsRoot = ""

		fileResults, err := w.Backfill.Run(ctx, fileOpts)
		if err != nil {
			return results, err
		}
		if len(fileResults) == 0 {
			continue
		}
		result := fileResults[0]
		if !result.Skipped {
			if err := appendIngested(path, w.IngestedLog); err != nil {
				return results, err
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// watchRecordingsRoot opens an fsnotify watch on opts.RecordingsRoot so Run
// can react to a dropped-in file immediately instead of waiting out the
// full interval. A watcher is best-effort: if fsnotify can't watch the
// directory (missing, no inotify support, etc.), Run falls back to pure
// interval polling.
func watchRecordingsRoot(root string) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil
	}
	return watcher
}

// drainEvents discards any events already queued on w's channel so a burst
// of writes to the same file only triggers one immediate poll.
func drainEvents(w *fsnotify.Watcher) {
	for {
		select {
		case <-w.Events:
		default:
			return
		}
	}
}

// Run loops Poll on interval, stopping after once (a single pass), after
// maxPolls passes (0 = unbounded), or when ctx is canceled. Between polls
// it also watches RecordingsRoot via fsnotify, waking early on a new file
// instead of waiting out the full interval.
func (w *Watch) Run(ctx context.Context, opts Options, interval time.Duration, once bool, maxPolls int) error {
	watcher := watchRecordingsRoot(opts.RecordingsRoot)
	if watcher != nil {
		defer watcher.Close()
	}

	polls := 0
	for {
		if _, err := w.Poll(ctx, opts); err != nil {
			return err
		}
		polls++
		if once || (maxPolls > 0 && polls >= maxPolls) {
			return nil
		}

		timer := time.NewTimer(interval)
		var events <-chan fsnotify.Event
		if watcher != nil {
			events = watcher.Events
		}
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-events:
			timer.Stop()
			drainEvents(watcher)
		}
	}
}
