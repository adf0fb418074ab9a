// Package config resolves meetingctl's configuration: the required vault
// and recordings roots, the derived state-directory paths, and every other
// tunable. Defaults live in an optional meetingctl.toml (cwd, then
// $XDG_CONFIG_HOME/meetingctl/meetingctl.toml); any
// MEETINGCTL_*/VAULT_PATH/RECORDINGS_PATH environment variable that is set
// overrides the corresponding TOML value, so the tool runs correctly from
// env vars alone with no file present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mgunville/obsidian-meetings/internal/merr"
)

// Config is the fully-resolved set of paths, external-tool commands, and
// timing defaults meetingctl's components are constructed from.
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	State  StateConfig  `toml:"state"`
	Tools  ToolsConfig  `toml:"tools"`
	Timing TimingConfig `toml:"timing"`
	DryRun DryRunConfig `toml:"dry_run"`
}

// PathsConfig holds the two required roots plus the vault sub-directory
// notes are created under.
type PathsConfig struct {
	VaultPath          string `toml:"vault_path"`
	RecordingsPath     string `toml:"recordings_path"`
	DefaultMeetingsDir string `toml:"default_meetings_folder"`
}

// StateConfig names every persisted-state file path.
type StateConfig struct {
	StateFile         string `toml:"state_file"`
	ProcessQueueFile  string `toml:"process_queue_file"`
	DeadLetterFile    string `toml:"process_queue_dead_letter_file"`
	ProcessedJobsFile string `toml:"processed_jobs_file"`
	IngestedFilesFile string `toml:"ingested_files_file"`
}

// ToolsConfig names the external-collaborator commands the capability
// package and the calendar backend cascade shell out to. The calendar
// back-ends and the recorder/transcriber/converter are described only by
// the capability they must satisfy, so meetingctl picks one
// MEETINGCTL_*_COMMAND environment variable per collaborator.
type ToolsConfig struct {
	RecorderCommand    string `toml:"recorder_command"`
	TranscriberCommand string `toml:"transcriber_command"`
	SummarizerCommand  string `toml:"summarizer_command"`
	ConverterCommand   string `toml:"converter_command"`
	EventKitCommand    string `toml:"eventkit_command"`
	JXACommand         string `toml:"jxa_command"`
	ICalBuddyCommand   string `toml:"icalbuddy_command"`
}

// CalendarCommands returns the three backend commands in cascade order,
// for internal/doctor's "at least one must resolve" check.
func (c *Config) CalendarCommands() []string {
	return []string{c.Tools.EventKitCommand, c.Tools.JXACommand, c.Tools.ICalBuddyCommand}
}

// TimingConfig holds the selector windows and filename timezones recognized
// as env vars.
type TimingConfig struct {
	MatchWindowMinutes        int    `toml:"match_window_minutes"`
	StartWindowMinutes        int    `toml:"start_window_minutes"`
	RecordingFilenameTimezone string `toml:"recording_filename_timezone"`
	VoicememoFilenameTimezone string `toml:"voicememo_filename_timezone"`
}

// DryRunConfig mirrors the MEETINGCTL_*_DRY_RUN switches capability.*For
// reads directly from the environment. applyEnv fills it in; nothing else
// in meetingctl reads it, and neither `doctor` nor `--json` output reports
// which dry-run modes are active.
type DryRunConfig struct {
	Recorder   bool `toml:"recorder"`
	Transcribe bool `toml:"transcribe"`
	Summarize  bool `toml:"summarize"`
	Convert    bool `toml:"convert"`
}

// New returns the zero-value defaults applied before a TOML file or the
// environment is layered on.
func New() *Config {
	return &Config{
		Paths: PathsConfig{
			DefaultMeetingsDir: "meetings",
		},
		Tools: ToolsConfig{
			RecorderCommand:    "meetingctl-recorder",
			TranscriberCommand: "meetingctl-transcribe",
			SummarizerCommand:  "meetingctl-summarize",
			ConverterCommand:   "ffmpeg",
			EventKitCommand:    "meetingctl-eventkit-helper",
			JXACommand:         "osascript",
			ICalBuddyCommand:   "icalBuddy",
		},
		Timing: TimingConfig{
			MatchWindowMinutes:        30,
			StartWindowMinutes:        15,
			RecordingFilenameTimezone: "Local",
			VoicememoFilenameTimezone: "Local",
		},
	}
}

// Default is an alias for New.
func Default() *Config { return New() }

// LoadFile decodes a meetingctl.toml file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// candidatePaths returns meetingctl.toml search locations in priority
// order: cwd first, then $XDG_CONFIG_HOME/meetingctl/meetingctl.toml.
func candidatePaths() []string {
	var out []string
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, "meetingctl.toml"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, "meetingctl", "meetingctl.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "meetingctl", "meetingctl.toml"))
	}
	return out
}

// Load resolves the full configuration: defaults, then the first
// meetingctl.toml found (if any), then every recognized environment
// variable, which always wins.
func Load() (*Config, error) {
	cfg := New()
	for _, p := range candidatePaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		loaded, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		break
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	str := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	str(&c.Paths.VaultPath, "VAULT_PATH")
	str(&c.Paths.RecordingsPath, "RECORDINGS_PATH")
	str(&c.Paths.DefaultMeetingsDir, "DEFAULT_MEETINGS_FOLDER")

	str(&c.State.StateFile, "MEETINGCTL_STATE_FILE")
	str(&c.State.ProcessQueueFile, "MEETINGCTL_PROCESS_QUEUE_FILE")
	str(&c.State.DeadLetterFile, "MEETINGCTL_PROCESS_QUEUE_DEAD_LETTER_FILE")
	str(&c.State.ProcessedJobsFile, "MEETINGCTL_PROCESSED_JOBS_FILE")
	str(&c.State.IngestedFilesFile, "MEETINGCTL_INGESTED_FILES_FILE")

	str(&c.Timing.RecordingFilenameTimezone, "MEETINGCTL_RECORDING_FILENAME_TIMEZONE")
	str(&c.Timing.VoicememoFilenameTimezone, "MEETINGCTL_VOICEMEMO_FILENAME_TIMEZONE")

	str(&c.Tools.RecorderCommand, "MEETINGCTL_RECORDER_COMMAND")
	str(&c.Tools.TranscriberCommand, "MEETINGCTL_TRANSCRIBER_COMMAND")
	str(&c.Tools.SummarizerCommand, "MEETINGCTL_SUMMARIZER_COMMAND")
	str(&c.Tools.ConverterCommand, "MEETINGCTL_CONVERTER_COMMAND")
	str(&c.Tools.EventKitCommand, "MEETINGCTL_EVENTKIT_COMMAND")
	str(&c.Tools.JXACommand, "MEETINGCTL_JXA_COMMAND")
	str(&c.Tools.ICalBuddyCommand, "MEETINGCTL_ICALBUDDY_COMMAND")

	if v := os.Getenv("MEETINGCTL_MATCH_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Timing.MatchWindowMinutes = n
		}
	}
	if v := os.Getenv("MEETINGCTL_START_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Timing.StartWindowMinutes = n
		}
	}

	if os.Getenv("MEETINGCTL_RECORDER_DRY_RUN") != "" {
		c.DryRun.Recorder = true
	}
	if os.Getenv("MEETINGCTL_TRANSCRIBE_DRY_RUN") != "" {
		c.DryRun.Transcribe = true
	}
	if os.Getenv("MEETINGCTL_SUMMARIZE_DRY_RUN") != "" {
		c.DryRun.Summarize = true
	}
	if os.Getenv("MEETINGCTL_CONVERT_DRY_RUN") != "" {
		c.DryRun.Convert = true
	}

	// State-directory defaults, applied only after the roots/env are
	// known, so MEETINGCTL_STATE_FILE etc. still win if set explicitly.
	if dir := c.stateDir(); dir != "" {
		if c.State.StateFile == "" {
			c.State.StateFile = filepath.Join(dir, "current.json")
		}
		if c.State.ProcessQueueFile == "" {
			c.State.ProcessQueueFile = filepath.Join(dir, "process_queue.jsonl")
		}
		if c.State.DeadLetterFile == "" {
			c.State.DeadLetterFile = filepath.Join(dir, "process_queue.deadletter.jsonl")
		}
		if c.State.ProcessedJobsFile == "" {
			c.State.ProcessedJobsFile = filepath.Join(dir, "processed_jobs.jsonl")
		}
		if c.State.IngestedFilesFile == "" {
			c.State.IngestedFilesFile = filepath.Join(dir, "ingested_files.jsonl")
		}
	}
}

// stateDir returns the per-user state directory new file defaults are
// rooted at: $XDG_STATE_HOME/meetingctl, falling back to
// ~/.local/state/meetingctl.
func (c *Config) stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "meetingctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "meetingctl")
}

// MeetingsRoot is the vault sub-directory notes are created under.
func (c *Config) MeetingsRoot() string {
	return filepath.Join(c.Paths.VaultPath, c.Paths.DefaultMeetingsDir)
}

// Validate requires both roots to be set and absolute.
func (c *Config) Validate() error {
	if c.Paths.VaultPath == "" || !filepath.IsAbs(c.Paths.VaultPath) {
		return merr.New(merr.KindConfigError, "VAULT_PATH must be set to an absolute path").
			WithHint("Set VAULT_PATH to an absolute path, e.g. export VAULT_PATH=\"$HOME/Documents/vault\"")
	}
	if c.Paths.RecordingsPath == "" || !filepath.IsAbs(c.Paths.RecordingsPath) {
		return merr.New(merr.KindConfigError, "RECORDINGS_PATH must be set to an absolute path").
			WithHint("Set RECORDINGS_PATH to an absolute path, e.g. export RECORDINGS_PATH=\"$HOME/Recordings\"")
	}
	return nil
}

// MatchWindow and StartWindow return the configured selector windows as
// time.Duration, for direct use by internal/selector.
func (c *Config) MatchWindow() time.Duration {
	return time.Duration(c.Timing.MatchWindowMinutes) * time.Minute
}

func (c *Config) StartWindow() time.Duration {
	return time.Duration(c.Timing.StartWindowMinutes) * time.Minute
}
