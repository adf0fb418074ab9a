package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// envelope is the JSON error shape: {"error": "...", "backend": "...",
// "hint": "..."}, with backend/hint omitted when empty.
type envelope struct {
	Error   string `json:"error"`
	Backend string `json:"backend,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// exitCoder is implemented by command-local sentinel errors (e.g.
// doctorFailure) that already printed their own report and just need to
// pick an exit code without going through the JSON/human envelope.
type exitCoder interface {
	ExitCode() int
}

// exitCodeFor maps a typed error to the process exit code its kind is
// assigned. Unrecognized errors (not *merr.Error) get 2, the catch-all
// "structured error" code.
func exitCodeFor(err error) int {
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	var me *merr.Error
	if e, ok := err.(*merr.Error); ok {
		me = e
	}
	if me == nil {
		return 2
	}
	switch me.Kind {
	case merr.KindAlreadyRecording, merr.KindStateLocked:
		return 1
	default:
		return 2
	}
}

// printResult writes a successful result to stdout, as a single JSON
// object when jsonMode is set or else via human, which renders the same
// value as a short human-readable line.
func printResult(jsonMode bool, result any, human func() string) error {
	if jsonMode {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(result)
	}
	fmt.Println(human())
	return nil
}

// silentError is implemented by errors whose command already rendered a
// full report via printResult and just need an exit code, not a second
// "error: ..." line.
type silentError interface {
	Silent() bool
}

// printError reports err to stderr, as a JSON envelope when jsonMode is
// set or else a single "error: ..." line, and returns the exit code the
// caller should use.
func printError(jsonMode bool, err error) int {
	if se, ok := err.(silentError); ok && se.Silent() {
		return exitCodeFor(err)
	}

	var me *merr.Error
	if e, ok := err.(*merr.Error); ok {
		me = e
	}

	if jsonMode {
		env := envelope{Error: err.Error()}
		if me != nil {
			env.Error = me.Error()
			env.Backend = me.Backend
			env.Hint = me.Hint
		}
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(env)
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if me != nil && me.Hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", me.Hint)
		}
	}
	return exitCodeFor(err)
}
