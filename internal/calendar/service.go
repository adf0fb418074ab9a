package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// Backend is the uniform "fetch events in [start,end]" capability every
// calendar back-end (EventKit/JXA/icalBuddy stand-ins) satisfies. start and
// end are nil when the caller wants the backend's full default window.
type Backend interface {
	Name() string
	FetchEvents(ctx context.Context, start, end *time.Time) ([]Event, error)
}

// Service cascades primary -> secondary -> tertiary, treating
// BackendUnavailable and an empty result interchangeably for the purpose
// of advancing to the next backend.
type Service struct {
	Backends []Backend // in priority order; nil entries are skipped
}

// Resolution records which backend supplied the final event list.
type Resolution struct {
	Events       []Event
	Backend      string
	FallbackUsed bool
}

// Resolve runs the cascade and returns the first non-empty result, or the
// last backend's empty result if every backend was unavailable or empty.
//
// A backend is only ever reached once every earlier backend was
// unavailable or empty, so any OperationalError it raises propagates
// immediately as a CalendarResolutionError naming that backend — the
// cascade does not try later backends after an operational failure.
func (s *Service) Resolve(ctx context.Context, start, end *time.Time) (Resolution, error) {
	var lastBackend string
	for i, b := range s.Backends {
		if b == nil {
			continue
		}
		lastBackend = b.Name()

		events, err := b.FetchEvents(ctx, start, end)
		if err != nil {
			if merr.As(err, merr.KindBackendUnavailable) {
				continue
			}
			return Resolution{}, (&merr.Error{
				Kind:    merr.KindCalendarResolution,
				Backend: b.Name(),
				Message: fmt.Sprintf("%s failed", b.Name()),
				Err:     err,
			})
		}

		if len(events) > 0 {
			return Resolution{Events: events, Backend: b.Name(), FallbackUsed: i > 0}, nil
		}
	}

	return Resolution{Events: nil, Backend: lastBackend, FallbackUsed: lastBackend != firstBackendName(s.Backends)}, nil
}

func firstBackendName(backends []Backend) string {
	for _, b := range backends {
		if b != nil {
			return b.Name()
		}
	}
	return ""
}

// ResolveAndSelect resolves the event list then applies selectFn (typically
// selector.NowOrNext or selector.NearestTo bound to a reference instant) to
// it. A nil match is reported as CalendarResolutionError with the backend
// that supplied the (empty or non-matching) list and the given hint.
func (s *Service) ResolveAndSelect(
	ctx context.Context,
	start, end *time.Time,
	selectFn func([]Event) (Event, bool),
) (Event, Resolution, error) {
	res, err := s.Resolve(ctx, start, end)
	if err != nil {
		return Event{}, Resolution{}, err
	}

	match, ok := selectFn(res.Events)
	if !ok {
		return Event{}, res, (&merr.Error{
			Kind:    merr.KindCalendarResolution,
			Backend: res.Backend,
			Hint:    "No ongoing/upcoming event in window",
			Message: "no calendar event matched the selection window",
		})
	}
	return match, res, nil
}
