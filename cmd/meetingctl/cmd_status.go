package main

import "fmt"

// StatusCmd reports the current recording session, if any.
type StatusCmd struct{}

func (c *StatusCmd) Run(app *App) error {
	orch := app.orchestrator()
	result, err := orch.Status(app.Clock.Now())
	if err != nil {
		return err
	}

	return printResult(app.JSON, result, func() string {
		if !result.Recording {
			return "Not recording"
		}
		return fmt.Sprintf("Recording %q on %s, started %s ago", *result.Title, *result.Platform, *result.DurationHuman)
	})
}
