// Package audit runs a read-only consistency sweep over a vault's notes,
// checking that each of notepatcher's five known sentinel regions is
// well-formed. It parses nothing new — it walks the same
// "<!-- NAME_START -->" / "<!-- NAME_END -->" grammar notepatcher.Patch
// relies on.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgunville/obsidian-meetings/internal/notepatcher"
)

// RegionIssue names one note/region pair that failed a check.
type RegionIssue struct {
	NotePath string `json:"note_path"`
	Region   string `json:"region"`
}

// Report is the result of one audit-notes run.
type Report struct {
	NotesScanned      int           `json:"notes_scanned"`
	OrphanedSentinels []RegionIssue `json:"orphaned_sentinels"`
	MissingRegions    []RegionIssue `json:"missing_regions"`
	OK                bool          `json:"ok"`
}

func regionNames() []string {
	names := make([]string, 0, len(notepatcher.KnownRegions))
	for name := range notepatcher.KnownRegions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run walks every *.md file under meetingsDir and checks each known
// sentinel region for presence and well-formed nesting.
func Run(meetingsDir string) (Report, error) {
	report := Report{}
	names := regionNames()

	err := filepath.WalkDir(meetingsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		report.NotesScanned++
		content := string(raw)

		for _, region := range names {
			start := fmt.Sprintf("<!-- %s_START -->", strings.ToUpper(region))
			end := fmt.Sprintf("<!-- %s_END -->", strings.ToUpper(region))

			startIdx := strings.Index(content, start)
			endIdx := strings.Index(content, end)

			switch {
			case startIdx == -1 && endIdx == -1:
				// Region absent entirely: not every note carries every
				// region (e.g. "references" is optional), so this is not
				// reported as an issue on its own.
				continue
			case startIdx == -1 || endIdx == -1:
				report.MissingRegions = append(report.MissingRegions, RegionIssue{NotePath: path, Region: region})
			case startIdx > endIdx:
				report.OrphanedSentinels = append(report.OrphanedSentinels, RegionIssue{NotePath: path, Region: region})
			default:
				secondStart := strings.Index(content[startIdx+len(start):], start)
				if secondStart != -1 && startIdx+len(start)+secondStart < endIdx {
					report.OrphanedSentinels = append(report.OrphanedSentinels, RegionIssue{NotePath: path, Region: region})
				}
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	report.OK = len(report.OrphanedSentinels) == 0 && len(report.MissingRegions) == 0
	return report, nil
}
