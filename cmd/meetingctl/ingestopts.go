package main

import (
	"strings"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/ingest"
)

// ingestFlags is the set of CLI flags backfill and ingest-watch share for
// building an ingest.Options.
type ingestFlags struct {
	Extensions     string `help:"Comma-separated list of file extensions to discover." default:"wav"`
	MatchCalendar  bool   `name:"match-calendar" help:"Look up candidate calendar events around each file's inferred start time."`
	ReviewCalendar bool   `name:"review-calendar" help:"Prompt interactively to pick among candidate calendar events for each file."`
	Rename         bool   `help:"Rename a matched file (and its .txt/.mp3 siblings) to its canonical meeting_id stem."`
	ProcessNow     bool   `name:"process-now" help:"Run the pipeline immediately instead of enqueueing."`
	DryRun         bool   `help:"Report what would happen without writing anything."`
	CandidateCount int    `name:"candidates" default:"5" help:"Number of candidate events to surface under review."`
}

func (f ingestFlags) toOptions(app *App, recordingsRoot string) ingest.Options {
	exts := strings.Split(f.Extensions, ",")
	for i, e := range exts {
		exts[i] = strings.TrimSpace(e)
	}
	return ingest.Options{
		RecordingsRoot: recordingsRoot,
		Extensions:     exts,
		MatchCalendar:  f.MatchCalendar,
		ReviewCalendar: f.ReviewCalendar,
		Rename:         f.Rename,
		ProcessNow:     f.ProcessNow,
		DryRun:         f.DryRun,
		CandidateCount: f.CandidateCount,
		MatchWindow:    app.Config.MatchWindow(),
		VoiceMemoTZ:    zoneFor(app.Config.Timing.VoicememoFilenameTimezone),
		FilenameTZ:     zoneFor(app.Config.Timing.RecordingFilenameTimezone),
	}
}

// zoneFor resolves a configured zone name, defaulting to the process's
// local zone for "Local" or an unrecognized name.
func zoneFor(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.Local
}

// newBackfill builds an ingest.Backfill wired to app's collaborators.
func (a *App) newBackfill(review ingest.ReviewFunc) *ingest.Backfill {
	return ingest.New(a.queue(), a.pipeline(), a.eventLookup(), review, a.createNoteForIngest(), a.Clock)
}
