// Package main is meetingctl's command-line entry point: it parses the CLI
// surface with kong and dispatches each subcommand's Run method against a
// wired App.
package main

import "github.com/alecthomas/kong"

// CLI defines meetingctl's command-line interface.
type CLI struct {
	JSON bool `help:"Emit a single JSON object on stdout instead of a human-readable line."`

	Start        StartCmd        `cmd:"" help:"Resolve the selected calendar event and start recording it."`
	Stop         StopCmd         `cmd:"" help:"Stop the active recording session and enqueue post-processing."`
	Status       StatusCmd       `cmd:"" help:"Show the current recording session, if any."`
	Event        EventCmd        `cmd:"" help:"Resolve and print the event that start would pick, without recording."`
	Doctor       DoctorCmd       `cmd:"" help:"Run environment precondition checks."`
	PatchNote    PatchNoteCmd    `cmd:"patch-note" help:"Patch one or more managed regions of a note."`
	ProcessQueue ProcessQueueCmd `cmd:"process-queue" help:"Drain the job queue, running each job through the processing pipeline."`
	Backfill     BackfillCmd     `cmd:"" help:"Promote loose recordings under the recordings root into the pipeline."`
	IngestWatch  IngestWatchCmd  `cmd:"ingest-watch" help:"Continuously promote loose recordings on an interval."`
	AuditNotes   AuditNotesCmd   `cmd:"audit-notes" help:"Check every note's managed regions for consistency."`
	Version      VersionCmd      `cmd:"" help:"Show version information."`
}

// kongVars supplies the values interpolated into kong's help text.
func kongVars() kong.Vars {
	return kong.Vars{"version": version}
}
