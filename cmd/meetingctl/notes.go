package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/identity"
	"github.com/mgunville/obsidian-meetings/internal/ingest"
	"github.com/mgunville/obsidian-meetings/internal/notetemplate"
	"github.com/mgunville/obsidian-meetings/internal/orchestrator"
)

// notePathFor derives the collision-safe destination for a new note: the
// canonical "<start> - <title> - <meeting_id>.md" filename under the vault
// meetings root.
func (a *App) notePathFor(title string, start string, meetingID string) (string, error) {
	startLocal, err := parseLooseRFC3339(start)
	if err != nil {
		return "", err
	}
	filename := identity.BuildNoteFilename(startLocal, title, meetingID)
	return identity.EnsureCollisionSafePath(filepath.Join(a.Config.MeetingsRoot(), filename))
}

// createNoteForEvent builds an orchestrator.NoteCreator backed by
// notetemplate, for `start` and `event` (the ad-hoc case goes through
// createNoteForIngest instead, since it needs to tolerate a nil event).
func (a *App) createNoteForEvent() orchestrator.NoteCreator {
	return func(ctx context.Context, event calendar.Event, meetingID string) (string, error) {
		path, err := a.notePathFor(event.Title, event.Start.Format(rfc3339), meetingID)
		if err != nil {
			return "", err
		}
		platform, _ := calendar.ResolvePlatform(event)
		fields := notetemplate.FieldsForEvent(event, string(platform), meetingID)
		if err := notetemplate.WriteNew(path, notetemplate.DefaultBody, fields); err != nil {
			return "", err
		}
		return path, nil
	}
}

// createNoteForIngest builds an ingest.NoteCreator: a matched event uses
// FieldsForEvent, an ad-hoc title uses FieldsForAdHoc anchored on the
// file's inferred start time, and preview mode computes the destination
// without writing anything.
func (a *App) createNoteForIngest() ingest.NoteCreator {
	return func(ctx context.Context, event *calendar.Event, adHocTitle, meetingID string, inferredStart time.Time, preview bool) (string, error) {
		var title, start string
		if event != nil {
			title = event.Title
			start = event.Start.Format(rfc3339)
		} else {
			title = adHocTitle
			start = inferredStart.Format(rfc3339)
		}

		path, err := a.notePathFor(title, start, meetingID)
		if err != nil {
			return "", err
		}
		if preview {
			return path, nil
		}

		var fields notetemplate.Fields
		if event != nil {
			platform, _ := calendar.ResolvePlatform(*event)
			fields = notetemplate.FieldsForEvent(*event, string(platform), meetingID)
		} else {
			fields = notetemplate.FieldsForAdHoc(title, inferredStart, meetingID)
		}
		if err := notetemplate.WriteNew(path, notetemplate.DefaultBody, fields); err != nil {
			return "", err
		}
		return path, nil
	}
}
