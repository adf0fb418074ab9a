// Package merr defines the typed error kinds shared across meetingctl's
// core packages, so the CLI layer (the only place that converts errors to
// exit codes and JSON envelopes) can do so uniformly.
package merr

import "fmt"

// Kind enumerates the recognized error kinds.
type Kind string

const (
	KindConfigError           Kind = "ConfigError"
	KindBackendUnavailable    Kind = "BackendUnavailable"
	KindOperationalError      Kind = "OperationalError"
	KindCalendarResolution    Kind = "CalendarResolutionError"
	KindAlreadyRecording      Kind = "AlreadyRecording"
	KindStateLocked           Kind = "StateLocked"
	KindQueueLockError        Kind = "QueueLockError"
	KindMissingSentinel       Kind = "MissingSentinel"
	KindInvalidPath           Kind = "InvalidPath"
	KindMissingInput          Kind = "MissingInput"
	KindSummaryParseError     Kind = "SummaryParseError"
	KindTranscriptionError    Kind = "TranscriptionError"
)

// Error is a typed meetingctl failure. The CLI layer inspects Kind to pick
// an exit code; nothing else should do a string-match on Error().
type Error struct {
	Kind    Kind
	Backend string // populated for CalendarResolutionError
	Hint    string
	Message string
	Err     error // wrapped underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed Error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a typed Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithHint attaches an actionable hint (e.g. "Run `meetingctl doctor`")
// and returns the receiver for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithBackend attaches the backend name that produced a
// CalendarResolutionError.
func (e *Error) WithBackend(backend string) *Error {
	e.Backend = backend
	return e
}

// As reports whether the first *Error found in err's chain (err itself or
// something it wraps) has the given kind. A *Error nested inside that first
// one is not examined.
func As(err error, kind Kind) bool {
	var me *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			me = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return me != nil && me.Kind == kind
}
