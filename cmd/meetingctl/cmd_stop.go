package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/mgunville/obsidian-meetings/internal/orchestrator"
)

// StopCmd ends the active recording, if any, and enqueues it for
// processing.
type StopCmd struct{}

func (c *StopCmd) Run(app *App) error {
	ctx := context.Background()
	orch := app.orchestrator()
	q := app.queue()

	result, err := orch.Stop(ctx, func(payload orchestrator.StopPayload) error {
		return q.Enqueue(map[string]any{
			"job_id":     uuid.New().String(),
			"meeting_id": payload.MeetingID,
			"note_path":  payload.NotePath,
		})
	})
	if err != nil {
		return err
	}

	return printResult(app.JSON, result, func() string {
		if !result.ProcessingTriggered {
			return result.Warning
		}
		if result.Warning != "" {
			return result.Warning
		}
		return "Recording stopped; processing enqueued"
	})
}
