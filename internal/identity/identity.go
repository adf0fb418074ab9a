// Package identity derives deterministic meeting IDs, note filenames, and
// collision-safe paths. Every function here is pure except
// EnsureCollisionSafePath, which only probes the filesystem for existence.
package identity

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeTitle collapses any run of non-alphanumeric characters into a
// single space and trims the result. An empty result falls back to
// "Untitled Meeting".
func SanitizeTitle(title string) string {
	s := nonAlnum.ReplaceAllString(title, " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return "Untitled Meeting"
	}
	return s
}

// MeetingID derives "m-" + the first 10 hex characters of
// sha1(startISO + "|" + lowercase(sanitized title)). Identical (title,
// start) always yields the identical ID.
func MeetingID(title, startISO string) string {
	sanitized := strings.ToLower(SanitizeTitle(title))
	sum := sha1.Sum([]byte(startISO + "|" + sanitized))
	return "m-" + hex.EncodeToString(sum[:])[:10]
}

// BuildNoteFilename renders the canonical note filename:
// "YYYY-MM-DD HHMM - <sanitized title> - <meeting_id>.md", using startLocal
// rendered in its own (already-local) timezone.
func BuildNoteFilename(startLocal time.Time, title, meetingID string) string {
	stamp := startLocal.Format("2006-01-02 1504")
	return fmt.Sprintf("%s - %s - %s.md", stamp, SanitizeTitle(title), meetingID)
}

// EnsureCollisionSafePath appends " (2)", " (3)", ... before the extension
// until the candidate path does not exist, then returns that path. The
// original path is returned unchanged if it is already free.
func EnsureCollisionSafePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
	}
}
