package main

import (
	"fmt"
	"strings"

	"github.com/mgunville/obsidian-meetings/internal/audit"
)

// AuditNotesCmd checks every note's managed regions for consistency.
type AuditNotesCmd struct{}

func (c *AuditNotesCmd) Run(app *App) error {
	report, err := audit.Run(app.Config.MeetingsRoot())
	if err != nil {
		return err
	}

	printErr := printResult(app.JSON, report, func() string {
		if report.OK {
			return fmt.Sprintf("%d note(s) scanned, no issues", report.NotesScanned)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%d note(s) scanned, %d issue(s):\n", report.NotesScanned,
			len(report.OrphanedSentinels)+len(report.MissingRegions))
		for _, issue := range report.MissingRegions {
			fmt.Fprintf(&b, "  missing  %s: %s\n", issue.Region, issue.NotePath)
		}
		for _, issue := range report.OrphanedSentinels {
			fmt.Fprintf(&b, "  orphaned %s: %s\n", issue.Region, issue.NotePath)
		}
		return strings.TrimRight(b.String(), "\n")
	})
	if printErr != nil {
		return printErr
	}
	if !report.OK {
		return auditFailure{}
	}
	return nil
}

// auditFailure signals a non-zero exit for an audit run that found
// issues; the report was already printed above.
type auditFailure struct{}

func (auditFailure) Error() string { return "audit found one or more issues" }
func (auditFailure) ExitCode() int { return 2 }
func (auditFailure) Silent() bool  { return true }
