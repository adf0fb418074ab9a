// Package selector implements the pure "now-or-next" and "nearest-to"
// choices over a list of calendar events.
package selector

import (
	"sort"
	"strings"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
)

func isCanceled(e calendar.Event) bool {
	return strings.HasPrefix(e.Title, "Canceled:")
}

func eligible(events []calendar.Event) []calendar.Event {
	out := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		if !isCanceled(e) {
			out = append(out, e)
		}
	}
	return out
}

func less(a, b calendar.Event) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.Title < b.Title
}

// NowOrNext partitions events into "ongoing" (start <= t < end) and
// "upcoming" (t < start <= t+window). It returns the smallest-(start,title)
// ongoing event if any exist, else the smallest-(start,title) upcoming
// event, else ok=false.
func NowOrNext(events []calendar.Event, t time.Time, window time.Duration) (calendar.Event, bool) {
	var ongoing, upcoming []calendar.Event
	deadline := t.Add(window)

	for _, e := range eligible(events) {
		switch {
		case !e.Start.After(t) && e.End.After(t):
			ongoing = append(ongoing, e)
		case t.Before(e.Start) && !e.Start.After(deadline):
			upcoming = append(upcoming, e)
		}
	}

	if best, ok := smallest(ongoing); ok {
		return best, true
	}
	return smallest(upcoming)
}

func smallest(events []calendar.Event) (calendar.Event, bool) {
	if len(events) == 0 {
		return calendar.Event{}, false
	}
	best := events[0]
	for _, e := range events[1:] {
		if less(e, best) {
			best = e
		}
	}
	return best, true
}

type distanced struct {
	event    calendar.Event
	distance time.Duration
}

// NearestTo computes, for every non-canceled event, a distance to t (0 if
// ongoing, else |start-t|), keeps events within window, and returns the
// single smallest-distance event only if exactly one event achieves the
// minimum distance. Two or more events tied on the minimum distance is an
// ambiguous match and returns ok=false.
func NearestTo(events []calendar.Event, t time.Time, window time.Duration) (calendar.Event, bool) {
	var candidates []distanced

	for _, e := range eligible(events) {
		var dist time.Duration
		ongoing := !e.Start.After(t) && e.End.After(t)
		if ongoing {
			dist = 0
		} else if e.Start.After(t) {
			dist = e.Start.Sub(t)
		} else {
			dist = t.Sub(e.Start)
		}
		if dist <= window {
			candidates = append(candidates, distanced{event: e, distance: dist})
		}
	}

	if len(candidates) == 0 {
		return calendar.Event{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return less(candidates[i].event, candidates[j].event)
	})

	min := candidates[0].distance
	tiedCount := 0
	for _, c := range candidates {
		if c.distance == min {
			tiedCount++
		}
	}
	if tiedCount > 1 {
		return calendar.Event{}, false
	}
	return candidates[0].event, true
}
