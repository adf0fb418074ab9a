package calendar

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform enumerates the recorder session targets a join URL can map to.
type Platform string

const (
	PlatformTeams   Platform = "teams"
	PlatformZoom    Platform = "zoom"
	PlatformMeet    Platform = "meet"
	PlatformWebex   Platform = "webex"
	PlatformSystem  Platform = "system"
	PlatformUnknown Platform = "unknown"
)

// hostPreference lists platform hosts in the priority order used to pick
// among multiple join URLs found in one event.
var hostPreference = []struct {
	host     string
	platform Platform
}{
	{"teams.microsoft.com", PlatformTeams},
	{"zoom.us", PlatformZoom},
	{"meet.google.com", PlatformMeet},
	{"webex.com", PlatformWebex},
}

// SessionNames maps each platform to the recorder session name the
// orchestrator passes through to the Recorder capability. Unknown falls
// back to PlatformSystem's entry via FallbackSessionName.
var SessionNames = map[Platform]string{
	PlatformTeams:  "Teams+Mic",
	PlatformZoom:   "Zoom+Mic",
	PlatformMeet:   "Meet+Mic",
	PlatformWebex:  "Webex+Mic",
	PlatformSystem: "System+Mic",
}

var urlPattern = regexp.MustCompile(`https?://[^\s)>\]"']+`)

// FindJoinURL scans url, location, and notes (in that order) for
// http(s):// URLs. Among every match found across all three fields, it
// prefers, in order, teams.microsoft.com, zoom.us, meet.google.com,
// webex.com; otherwise it returns the first URL encountered. Returns
// ("", false) if no URL is found anywhere.
func FindJoinURL(rawURL, location, notes string) (string, bool) {
	var all []string
	for _, field := range []string{rawURL, location, notes} {
		all = append(all, urlPattern.FindAllString(field, -1)...)
	}
	if len(all) == 0 {
		return "", false
	}

	for _, pref := range hostPreference {
		for _, u := range all {
			if hostContains(u, pref.host) {
				return u, true
			}
		}
	}
	return all[0], true
}

func hostContains(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.Contains(rawURL, host)
	}
	return strings.Contains(strings.ToLower(parsed.Host), host)
}

// PlatformForURL maps a join URL's host to a Platform, PlatformUnknown if
// it matches none of the known hosts.
func PlatformForURL(rawURL string) Platform {
	for _, pref := range hostPreference {
		if hostContains(rawURL, pref.host) {
			return pref.platform
		}
	}
	return PlatformUnknown
}

// ResolvePlatform finds the join URL (if any) across url/location/notes and
// maps it to a Platform. Returns PlatformUnknown, "" when no URL is found.
func ResolvePlatform(e Event) (Platform, string) {
	joinURL, ok := FindJoinURL(e.URL, e.Location, e.Notes)
	if !ok {
		return PlatformUnknown, ""
	}
	return PlatformForURL(joinURL), joinURL
}

// SessionNameFor returns the recorder session name for a platform and
// reports whether the system/unknown fallback rule was used.
func SessionNameFor(p Platform) (name string, fallbackUsed bool) {
	if name, ok := SessionNames[p]; ok {
		return name, false
	}
	return SessionNames[PlatformSystem], true
}
