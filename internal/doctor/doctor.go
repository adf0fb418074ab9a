// Package doctor runs a fixed list of declarative, side-effect-free
// precondition checks and reports them as a structured diagnostic.
package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Check is one precondition result.
type Check struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates every check; OK is the conjunction of all mandatory
// checks.
type Report struct {
	Checks []Check `json:"checks"`
	OK     bool    `json:"ok"`
}

// Config names the paths and binaries the checks probe.
type Config struct {
	VaultRoot      string
	RecordingsRoot string
	RecorderCmd    string
	TranscriberCmd string
	ConverterCmd   string
	CalendarCmds   []string // at least one must resolve
}

func checkAbsoluteDir(name, path, hint string) Check {
	if path == "" {
		return Check{Name: name, OK: false, Message: "path is not configured", Hint: hint}
	}
	if !filepath.IsAbs(path) {
		return Check{Name: name, OK: false, Message: path + " is not an absolute path", Hint: hint}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: name, OK: false, Message: path + " does not exist", Hint: hint}
	}
	if !info.IsDir() {
		return Check{Name: name, OK: false, Message: path + " is not a directory", Hint: hint}
	}
	return Check{Name: name, OK: true, Message: path}
}

func checkBinary(name, command, hint string) Check {
	if command == "" {
		return Check{Name: name, OK: false, Message: "no command configured", Hint: hint}
	}
	if _, err := exec.LookPath(command); err != nil {
		return Check{Name: name, OK: false, Message: command + " not found on PATH", Hint: hint}
	}
	return Check{Name: name, OK: true, Message: command}
}

// Run executes the fixed check list against cfg.
func Run(cfg Config) Report {
	checks := []Check{
		checkAbsoluteDir("vault_root", cfg.VaultRoot, "Set VAULT_PATH to an absolute, existing directory"),
		checkAbsoluteDir("recordings_root", cfg.RecordingsRoot, "Set RECORDINGS_PATH to an absolute, existing directory"),
		checkBinary("recorder", cfg.RecorderCmd, "Install or configure the audio recorder"),
		checkBinary("transcriber", cfg.TranscriberCmd, "Install the transcription tool"),
		checkBinary("audio_converter", cfg.ConverterCmd, "Install ffmpeg"),
		calendarCheck(cfg.CalendarCmds),
	}

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
		}
	}
	return Report{Checks: checks, OK: ok}
}

func calendarCheck(commands []string) Check {
	for _, cmd := range commands {
		if cmd == "" {
			continue
		}
		if _, err := exec.LookPath(cmd); err == nil {
			return Check{Name: "calendar_backend", OK: true, Message: cmd}
		}
	}
	return Check{
		Name:    "calendar_backend",
		OK:      false,
		Message: "no configured calendar backend binary was found on PATH",
		Hint:    "Grant permission in System Settings, or install a calendar backend helper",
	}
}
