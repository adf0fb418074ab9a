// Package notepatcher replaces sentinel-delimited managed regions inside a
// Markdown note, idempotently and atomically. It is the only code in
// meetingctl allowed to mutate a note, and it only ever touches the spans
// between matching "<!-- <NAME>_START -->" / "<!-- <NAME>_END -->" pairs.
package notepatcher

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// KnownRegions are the region names the schema understands. Any key in
// Patch's updates map outside this set is silently ignored.
var KnownRegions = map[string]bool{
	"minutes":      true,
	"decisions":    true,
	"action_items": true,
	"transcript":   true,
	"references":   true,
}

// Result describes the outcome of a Patch call.
type Result struct {
	Changed        bool
	ChangedRegions []string
	WritePerformed bool
}

func startSentinel(region string) string {
	return fmt.Sprintf("<!-- %s_START -->", strings.ToUpper(region))
}

func endSentinel(region string) string {
	return fmt.Sprintf("<!-- %s_END -->", strings.ToUpper(region))
}

// Patch applies updates (region name -> new content) to the note at
// notePath. Regions not present in KnownRegions are ignored. Missing either
// sentinel for a requested, known region fails with merr.KindMissingSentinel.
// When dryRun is true, the write is skipped but Changed is still computed.
func Patch(notePath string, updates map[string]string, dryRun bool) (Result, error) {
	raw, err := os.ReadFile(notePath)
	if err != nil {
		return Result{}, fmt.Errorf("read note: %w", err)
	}
	original := string(raw)
	current := original

	var changedRegions []string
	for region, content := range updates {
		if !KnownRegions[region] {
			continue
		}

		start := startSentinel(region)
		end := endSentinel(region)

		startIdx := strings.Index(current, start)
		if startIdx == -1 {
			return Result{}, merr.New(merr.KindMissingSentinel,
				fmt.Sprintf("%s: missing %s", notePath, start))
		}
		spanStart := startIdx + len(start)

		endIdx := strings.Index(current[spanStart:], end)
		if endIdx == -1 {
			return Result{}, merr.New(merr.KindMissingSentinel,
				fmt.Sprintf("%s: missing %s after its START", notePath, end))
		}
		endIdx += spanStart

		newSpan := "\n" + strings.TrimRight(content, "\n") + "\n"
		oldSpan := current[spanStart:endIdx]

		if oldSpan != newSpan {
			changedRegions = append(changedRegions, region)
			current = current[:spanStart] + newSpan + current[endIdx:]
		}
	}

	result := Result{
		Changed:        len(changedRegions) > 0,
		ChangedRegions: changedRegions,
		WritePerformed: false,
	}

	if !result.Changed || dryRun {
		return result, nil
	}

	if err := renameio.WriteFile(notePath, []byte(current), 0o644); err != nil {
		return Result{}, fmt.Errorf("write note: %w", err)
	}
	result.WritePerformed = true
	return result, nil
}
