package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mgunville/obsidian-meetings/internal/calendar"
)

func at(hm string) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		panic(err)
	}
	return t
}

func ev(title, start, end string) calendar.Event {
	return calendar.Event{Title: title, Start: at(start), End: at(end)}
}

func TestNearestToTieAtBoundary(t *testing.T) {
	events := []calendar.Event{
		ev("A", "10:00", "11:00"),
		ev("B", "11:00", "11:30"),
	}
	got, ok := NearestTo(events, at("11:00"), 90*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "B", got.Title)
}

func TestNearestToAmbiguousReturnsNoMatch(t *testing.T) {
	events := []calendar.Event{
		ev("A", "10:05", "10:25"),
		ev("B", "10:05", "10:25"),
	}
	_, ok := NearestTo(events, at("10:00"), 30*time.Minute)
	assert.False(t, ok)
}

func TestNowOrNextPrefersOngoing(t *testing.T) {
	events := []calendar.Event{
		ev("Upcoming", "10:30", "11:00"),
		ev("Ongoing", "09:50", "10:20"),
	}
	got, ok := NowOrNext(events, at("10:00"), 60*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "Ongoing", got.Title)
}

func TestNowOrNextFallsBackToUpcoming(t *testing.T) {
	events := []calendar.Event{
		ev("TooLate", "12:00", "12:30"),
		ev("Next", "10:20", "10:50"),
	}
	got, ok := NowOrNext(events, at("10:00"), 30*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "Next", got.Title)
}

func TestNowOrNextNoMatch(t *testing.T) {
	events := []calendar.Event{ev("TooFar", "12:00", "12:30")}
	_, ok := NowOrNext(events, at("10:00"), 30*time.Minute)
	assert.False(t, ok)
}

func TestCanceledEventsExcluded(t *testing.T) {
	events := []calendar.Event{
		ev("Canceled: Standup", "09:50", "10:20"),
		ev("Next", "10:20", "10:50"),
	}
	got, ok := NowOrNext(events, at("10:00"), 60*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "Next", got.Title)
}

func TestNowOrNextTieBreaksByTitle(t *testing.T) {
	events := []calendar.Event{
		ev("Zeta", "10:20", "10:50"),
		ev("Alpha", "10:20", "10:50"),
	}
	got, ok := NowOrNext(events, at("10:00"), 60*time.Minute)
	assert.True(t, ok)
	assert.Equal(t, "Alpha", got.Title)
}
