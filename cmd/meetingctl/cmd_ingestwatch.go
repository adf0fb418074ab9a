package main

import (
	"context"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/ingest"
)

// IngestWatchCmd repeats backfill on an interval, skipping files already
// recorded in the ingested-files log.
type IngestWatchCmd struct {
	ingestFlags
	IntervalSeconds int  `name:"interval" default:"60" help:"Seconds between polls."`
	MinAgeSeconds   int  `name:"min-age" default:"5" help:"Skip files younger than this many seconds."`
	Once            bool `help:"Run a single poll and exit."`
	MaxPolls        int  `name:"max-polls" help:"Stop after this many polls (0 = unbounded)."`
}

func (c *IngestWatchCmd) Run(app *App) error {
	var review ingest.ReviewFunc
	if c.ReviewCalendar {
		review = newInteractiveReviewer()
	}
	b := app.newBackfill(review)
	w := &ingest.Watch{
		Backfill:    b,
		IngestedLog: app.Config.State.IngestedFilesFile,
		MinAge:      time.Duration(c.MinAgeSeconds) * time.Second,
	}
	opts := c.ingestFlags.toOptions(app, app.Config.Paths.RecordingsPath)

	err := w.Run(context.Background(), opts, time.Duration(c.IntervalSeconds)*time.Second, c.Once, c.MaxPolls)
	if err != nil {
		return err
	}

	return printResult(app.JSON, map[string]any{"stopped": true}, func() string {
		return "ingest-watch stopped"
	})
}
