package main

import "fmt"

// VersionCmd prints build-time version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	return printResult(app.JSON, map[string]string{
		"version":    version,
		"commit":     commit,
		"build_time": buildTime,
	}, func() string {
		return fmt.Sprintf("meetingctl %s (commit %s, built %s)", version, commit, buildTime)
	})
}
