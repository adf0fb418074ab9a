package main

import (
	"context"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/identity"
	"github.com/mgunville/obsidian-meetings/internal/selector"
)

// StartCmd resolves the calendar event the selector would choose right
// now, creates its note, and starts the recorder.
type StartCmd struct{}

func (c *StartCmd) Run(app *App) error {
	ctx := context.Background()
	orch := app.orchestrator()
	calSvc := app.calendarService()

	now := app.Clock.Now()
	selectFn := func(events []calendar.Event) (calendar.Event, bool) {
		return selector.NowOrNext(events, now, app.Config.StartWindow())
	}

	result, err := orch.StartFromEvent(ctx, calSvc, selectFn, app.meetingIDForEvent, app.createNoteForEvent())
	if err != nil {
		return err
	}

	return printResult(app.JSON, result.State, func() string {
		return "Recording started: " + result.State.Title + " (" + result.State.SessionName + ")"
	})
}

// meetingIDForEvent derives the deterministic meeting ID for a resolved
// event, the same derivation ingest uses for a matched event.
func (a *App) meetingIDForEvent(e calendar.Event) string {
	return identity.MeetingID(e.Title, e.Start.Format(rfc3339))
}
