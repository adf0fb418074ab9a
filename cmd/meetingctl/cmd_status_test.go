package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/clock"
	"github.com/mgunville/obsidian-meetings/internal/config"
)

func TestStatusCmd_NotRecording(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.State.StateFile = filepath.Join(dir, "current.json")

	app := NewApp(cfg, false)
	cmd := &StatusCmd{}
	if err := cmd.Run(app); err != nil {
		t.Fatalf("expected idle status to succeed, got %v", err)
	}
}

func TestStatusCmd_RecordingReportsDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEETINGCTL_RECORDER_DRY_RUN", "1")

	cfg := config.New()
	cfg.State.StateFile = filepath.Join(dir, "current.json")

	start := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	app := NewApp(cfg, false)
	app.Clock = clock.Fixed{At: start.Add(10 * time.Minute)}

	event := calendar.Event{Title: "Standup", Start: start, End: start.Add(30 * time.Minute)}
	orch := app.orchestrator()
	if _, err := orch.Start(context.Background(), event, "m-test0001", filepath.Join(dir, "note.md")); err != nil {
		t.Fatalf("expected Start to succeed, got %v", err)
	}

	cmd := &StatusCmd{}
	if err := cmd.Run(app); err != nil {
		t.Fatalf("expected status to succeed, got %v", err)
	}
}
