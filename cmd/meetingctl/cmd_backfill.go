package main

import (
	"context"
	"fmt"

	"github.com/mgunville/obsidian-meetings/internal/ingest"
)

// BackfillCmd promotes loose recordings under the recordings root into the
// pipeline, once.
type BackfillCmd struct {
	ingestFlags
}

func (c *BackfillCmd) Run(app *App) error {
	var review ingest.ReviewFunc
	if c.ReviewCalendar {
		review = newInteractiveReviewer()
	}
	b := app.newBackfill(review)
	opts := c.ingestFlags.toOptions(app, app.Config.Paths.RecordingsPath)

	results, err := b.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	return printResult(app.JSON, results, func() string {
		enqueued, processed, skipped := 0, 0, 0
		for _, r := range results {
			switch {
			case r.Skipped:
				skipped++
			case r.Processed:
				processed++
			case r.Enqueued:
				enqueued++
			}
		}
		return fmt.Sprintf("%d file(s): %d enqueued, %d processed, %d skipped", len(results), enqueued, processed, skipped)
	})
}
