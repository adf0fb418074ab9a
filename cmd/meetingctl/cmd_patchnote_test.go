package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestNote(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "note.md")
	body := "# Standup\n\n<!-- MINUTES_START -->\n> _Pending_\n<!-- MINUTES_END -->\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPatchNoteCmd_RunUpdatesRegion(t *testing.T) {
	dir := t.TempDir()
	notePath := writeTestNote(t, dir)

	cmd := &PatchNoteCmd{Note: notePath, Minutes: "Talked about release timing."}
	app := &App{JSON: false}
	if err := cmd.Run(app); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(notePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Talked about release timing.") {
		t.Errorf("expected note to contain updated minutes, got:\n%s", data)
	}
}

func TestPatchNoteCmd_DryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	notePath := writeTestNote(t, dir)
	original, _ := os.ReadFile(notePath)

	cmd := &PatchNoteCmd{Note: notePath, Minutes: "Would change this.", DryRun: true}
	app := &App{JSON: false}
	if err := cmd.Run(app); err != nil {
		t.Fatal(err)
	}

	after, _ := os.ReadFile(notePath)
	if string(after) != string(original) {
		t.Error("expected dry-run to leave the note untouched")
	}
}

func TestPatchNoteCmd_NoUpdatesIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	notePath := writeTestNote(t, dir)

	cmd := &PatchNoteCmd{Note: notePath}
	app := &App{JSON: false}
	if err := cmd.Run(app); err != nil {
		t.Fatal(err)
	}
}
