package main

import (
	"fmt"
	"strings"

	"github.com/mgunville/obsidian-meetings/internal/doctor"
)

// DoctorCmd runs the fixed precondition checklist and exits non-zero when
// any check fails.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(app *App) error {
	report := doctor.Run(doctor.Config{
		VaultRoot:      app.Config.Paths.VaultPath,
		RecordingsRoot: app.Config.Paths.RecordingsPath,
		RecorderCmd:    app.Config.Tools.RecorderCommand,
		TranscriberCmd: app.Config.Tools.TranscriberCommand,
		ConverterCmd:   app.Config.Tools.ConverterCommand,
		CalendarCmds:   app.Config.CalendarCommands(),
	})

	err := printResult(app.JSON, report, func() string {
		var b strings.Builder
		for _, check := range report.Checks {
			status := "PASS"
			if !check.OK {
				status = "FAIL"
			}
			fmt.Fprintf(&b, "[%s] %-16s %s\n", status, check.Name, check.Message)
			if !check.OK && check.Hint != "" {
				fmt.Fprintf(&b, "       hint: %s\n", check.Hint)
			}
		}
		return strings.TrimRight(b.String(), "\n")
	})
	if err != nil {
		return err
	}
	if !report.OK {
		return doctorFailure{}
	}
	return nil
}

// doctorFailure signals a non-zero exit for a failed doctor run without
// re-printing anything: the report itself was already written by
// printResult above. It maps to exit code 1, like other precondition
// failures, and is recognized by main's silent-exit check.
type doctorFailure struct{}

func (doctorFailure) Error() string { return "one or more doctor checks failed" }
func (doctorFailure) ExitCode() int { return 1 }
func (doctorFailure) Silent() bool  { return true }
