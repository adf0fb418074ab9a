// Package applog provides the component-tagged structured logger shared by
// every meetingctl package: each event carries a component name plus a set
// of fields, rendered through zerolog.
package applog

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	jsonOut = false
)

// UseJSON switches every future logger returned by For to single-line JSON,
// matching --json CLI mode where stdout is reserved for the result payload
// and stderr carries machine-readable diagnostics.
func UseJSON(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	base = zerolog.New(w).With().Timestamp().Logger()
	jsonOut = true
}

// SetLevel sets the minimum level emitted by every component logger.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	base = base.Level(level)
}

// For returns a logger tagged with the given component name, e.g.
// applog.For("queue").Info().Msg("processed job").
func For(component string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base.With().Str("component", component).Logger()
}

// IsJSON reports whether logging has been switched to JSON mode.
func IsJSON() bool {
	mu.Lock()
	defer mu.Unlock()
	return jsonOut
}
