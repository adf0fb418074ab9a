package main

import "github.com/mgunville/obsidian-meetings/internal/notepatcher"

// PatchNoteCmd patches one or more managed regions of a single note,
// mainly for manual repair or scripting.
type PatchNoteCmd struct {
	Note        string `arg:"" help:"Path to the note to patch."`
	Minutes     string `help:"New content for the minutes region."`
	Decisions   string `help:"New content for the decisions region."`
	ActionItems string `name:"action-items" help:"New content for the action-items region."`
	Transcript  string `help:"New content for the transcript region."`
	References  string `help:"New content for the references region."`
	DryRun      bool   `help:"Compute the diff without writing the note."`
}

func (c *PatchNoteCmd) Run(app *App) error {
	updates := map[string]string{}
	for region, value := range map[string]string{
		"minutes":      c.Minutes,
		"decisions":    c.Decisions,
		"action_items": c.ActionItems,
		"transcript":   c.Transcript,
		"references":   c.References,
	} {
		if value != "" {
			updates[region] = value
		}
	}

	result, err := notepatcher.Patch(c.Note, updates, c.DryRun)
	if err != nil {
		return err
	}

	return printResult(app.JSON, result, func() string {
		if !result.Changed {
			return "No managed regions changed"
		}
		if c.DryRun {
			return "Would change: " + joinRegions(result.ChangedRegions)
		}
		return "Changed: " + joinRegions(result.ChangedRegions)
	})
}

func joinRegions(regions []string) string {
	out := ""
	for i, r := range regions {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out
}
