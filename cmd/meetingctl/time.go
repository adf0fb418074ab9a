package main

import "time"

const rfc3339 = time.RFC3339

// parseLooseRFC3339 parses an RFC3339 timestamp in the local zone,
// tolerating the zone-less form identity.BuildNoteFilename's callers pass
// around internally.
func parseLooseRFC3339(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}
