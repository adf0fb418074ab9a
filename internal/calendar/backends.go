package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// wireEvent is the JSON shape every back-end emits on stdout: one array of
// objects with string fields and ISO-8601-with-offset timestamps.
type wireEvent struct {
	Title        string `json:"title"`
	Start        string `json:"start"`
	End          string `json:"end"`
	CalendarName string `json:"calendar_name"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
	URL          string `json:"url"`
}

func parseWireEvents(raw []byte) ([]Event, error) {
	var wire []wireEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parse backend output: %w", err)
	}
	events := make([]Event, 0, len(wire))
	for _, w := range wire {
		start, err := time.Parse(time.RFC3339, w.Start)
		if err != nil {
			return nil, fmt.Errorf("parse start %q: %w", w.Start, err)
		}
		end, err := time.Parse(time.RFC3339, w.End)
		if err != nil {
			return nil, fmt.Errorf("parse end %q: %w", w.End, err)
		}
		events = append(events, Event{
			Title:        w.Title,
			Start:        start,
			End:          end,
			CalendarName: w.CalendarName,
			Location:     w.Location,
			Notes:        w.Notes,
			URL:          w.URL,
		})
	}
	return events, nil
}

// SubprocessBackend invokes an external helper binary that prints a JSON
// array of wireEvent objects to stdout for the requested window. The
// concrete calendar backends (EventKit, JXA, icalBuddy) are all this same
// shape — a tagged strategy, not an inheritance tree.
type SubprocessBackend struct {
	BackendName string
	Command     string
	Args        []string
	Timeout     time.Duration // default 30s
}

// Name implements Backend.
func (b SubprocessBackend) Name() string { return b.BackendName }

// FetchEvents implements Backend by shelling out to Command with Args, plus
// --start/--end flags when a window is given, and parsing its stdout.
//
// A binary missing from PATH or an exit code of 126 (permission denied) is
// reported as BackendUnavailable, matching the precondition-failure semantics the
// cascade requires; any other non-zero exit or unparsable output is an
// OperationalError.
func (b SubprocessBackend) FetchEvents(ctx context.Context, start, end *time.Time) ([]Event, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := exec.LookPath(b.Command); err != nil {
		return nil, merr.Wrap(merr.KindBackendUnavailable,
			fmt.Sprintf("%s binary not found", b.Command), err)
	}

	args := append([]string{}, b.Args...)
	if start != nil {
		args = append(args, "--start", start.Format(time.RFC3339))
	}
	if end != nil {
		args = append(args, "--end", end.Format(time.RFC3339))
	}

	cmd := exec.CommandContext(ctx, b.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, merr.Wrap(merr.KindOperationalError,
			fmt.Sprintf("%s timed out after %s", b.Command, timeout), ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 126 {
			return nil, merr.Wrap(merr.KindBackendUnavailable,
				fmt.Sprintf("%s: permission denied", b.Command), err)
		}
		return nil, merr.Wrap(merr.KindOperationalError,
			fmt.Sprintf("%s: %s", b.Command, stderr.String()), err)
	}

	events, err := parseWireEvents(stdout.Bytes())
	if err != nil {
		return nil, merr.Wrap(merr.KindOperationalError, "invalid backend output", err)
	}
	return events, nil
}

// NewEventKitBackend models the primary macOS EventKit back-end.
func NewEventKitBackend(command string) Backend {
	return SubprocessBackend{BackendName: "eventkit", Command: command, Args: []string{"--format", "json"}}
}

// NewJXABackend models the JavaScript-for-Automation fallback back-end.
func NewJXABackend(command string) Backend {
	return SubprocessBackend{BackendName: "jxa", Command: command, Args: []string{"-l", "JavaScript"}}
}

// NewICalBuddyBackend models the icalBuddy tertiary back-end.
func NewICalBuddyBackend(command string) Backend {
	return SubprocessBackend{BackendName: "icalbuddy", Command: command, Args: []string{"-tf", "%H:%M", "-ea", "eventsToday"}}
}
