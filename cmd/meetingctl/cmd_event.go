package main

import (
	"context"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
	"github.com/mgunville/obsidian-meetings/internal/selector"
)

// EventCmd resolves and prints the event Start would pick, without
// recording or creating a note — useful for dry-running the selector.
type EventCmd struct{}

// eventView is the printable projection of a resolved calendar.Event.
type eventView struct {
	Title        string `json:"title"`
	Start        string `json:"start"`
	End          string `json:"end"`
	CalendarName string `json:"calendar_name"`
	Location     string `json:"location,omitempty"`
	Platform     string `json:"platform"`
}

func (c *EventCmd) Run(app *App) error {
	ctx := context.Background()
	calSvc := app.calendarService()

	now := app.Clock.Now()
	event, _, err := calSvc.ResolveAndSelect(ctx, nil, nil, func(events []calendar.Event) (calendar.Event, bool) {
		return selector.NowOrNext(events, now, app.Config.StartWindow())
	})
	if err != nil {
		return err
	}

	platform, _ := calendar.ResolvePlatform(event)
	view := eventView{
		Title:        event.Title,
		Start:        event.Start.Format(rfc3339),
		End:          event.End.Format(rfc3339),
		CalendarName: event.CalendarName,
		Location:     event.Location,
		Platform:     string(platform),
	}

	return printResult(app.JSON, view, func() string {
		return view.Title + " (" + view.Platform + ") " + view.Start + " - " + view.End
	})
}
