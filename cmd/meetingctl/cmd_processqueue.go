package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/pipeline"
	"github.com/mgunville/obsidian-meetings/internal/queue"
)

// ProcessQueueCmd drains the job queue, running each job through the
// processing pipeline.
type ProcessQueueCmd struct {
	Max        int    `help:"Maximum number of jobs to process in this run (0 = all)."`
	OnFailure  string `enum:"stop,dead_letter" default:"stop" help:"What to do with a job whose processing fails."`
}

func (c *ProcessQueueCmd) Run(app *App) error {
	q := app.queue()
	pl := app.pipeline()
	ctx := context.Background()

	handler := func(raw map[string]any) error {
		data, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		var job pipeline.Job
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		_, err = pl.RunProcessing(ctx, job)
		return err
	}

	result, err := q.ProcessJobs(handler, c.Max, queue.FailureMode(c.OnFailure), app.Config.State.DeadLetterFile, func() time.Time { return app.Clock.Now() })
	if err != nil {
		return err
	}

	return printResult(app.JSON, result, func() string {
		return fmt.Sprintf("processed=%d failed=%d remaining=%d", result.Processed, result.Failed, result.Remaining)
	})
}
