// Package notetemplate renders the Markdown template meetingctl creates a
// new note from: frontmatter plus the sentinel-delimited regions
// internal/notepatcher later rewrites. Placeholders use a "{{ key }}"
// syntax, so this is a thin text/template wrapper.
package notetemplate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
)

// DefaultBody is the stock managed-note template: a frontmatter block
// followed by all five sentinel region pairs, including the optional
// "references" region.
const DefaultBody = `---
title: {{ .Title }}
calendar: {{ .CalendarName }}
platform: {{ .Platform }}
start: {{ .Start }}
end: {{ .End }}
location: {{ .Location }}
url: {{ .URL }}
meeting_id: {{ .MeetingID }}
---

# {{ .Title }}

## Minutes

<!-- MINUTES_START -->
> _Pending_
<!-- MINUTES_END -->

## Decisions

<!-- DECISIONS_START -->
> _Pending_
<!-- DECISIONS_END -->

## Action Items

<!-- ACTION_ITEMS_START -->
> _Pending_
<!-- ACTION_ITEMS_END -->

## Transcript

<!-- TRANSCRIPT_START -->
> _Pending_
<!-- TRANSCRIPT_END -->

## References

<!-- REFERENCES_START -->
> _Pending_
<!-- REFERENCES_END -->
`

// Fields is the set of placeholders DefaultBody substitutes.
type Fields struct {
	Title        string
	CalendarName string
	Platform     string
	Start        string
	End          string
	Location     string
	URL          string
	MeetingID    string
}

// FieldsForEvent builds Fields from a resolved calendar event plus the
// platform/meeting ID the caller already derived.
func FieldsForEvent(e calendar.Event, platform, meetingID string) Fields {
	return Fields{
		Title:        e.Title,
		CalendarName: e.CalendarName,
		Platform:     platform,
		Start:        e.Start.Format(time.RFC3339),
		End:          e.End.Format(time.RFC3339),
		Location:     e.Location,
		URL:          e.URL,
		MeetingID:    meetingID,
	}
}

// FieldsForAdHoc builds Fields for a note with no matched calendar event
// (backfill/ingest ad-hoc title case).
func FieldsForAdHoc(title string, start time.Time, meetingID string) Fields {
	return Fields{
		Title:     title,
		Platform:  "unknown",
		Start:     start.Format(time.RFC3339),
		MeetingID: meetingID,
	}
}

// Render substitutes fields into body (DefaultBody unless the caller
// supplies a custom one).
func Render(body string, fields Fields) (string, error) {
	tmpl, err := template.New("note").Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse note template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("render note template: %w", err)
	}
	return buf.String(), nil
}

// WriteNew renders body with fields and writes it to path, creating parent
// directories as needed. It does not overwrite an existing file; callers
// are expected to have already run identity.EnsureCollisionSafePath.
func WriteNew(path, body string, fields Fields) error {
	rendered, err := Render(body, fields)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(rendered); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}
