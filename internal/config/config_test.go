package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VAULT_PATH", "RECORDINGS_PATH", "DEFAULT_MEETINGS_FOLDER",
		"MEETINGCTL_STATE_FILE", "MEETINGCTL_PROCESS_QUEUE_FILE",
		"MEETINGCTL_PROCESS_QUEUE_DEAD_LETTER_FILE", "MEETINGCTL_PROCESSED_JOBS_FILE",
		"MEETINGCTL_INGESTED_FILES_FILE", "MEETINGCTL_MATCH_WINDOW_MINUTES",
		"MEETINGCTL_START_WINDOW_MINUTES", "MEETINGCTL_RECORDER_DRY_RUN",
		"MEETINGCTL_TRANSCRIBE_DRY_RUN", "MEETINGCTL_CONVERT_DRY_RUN",
		"XDG_STATE_HOME", "XDG_CONFIG_HOME",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "meetings", cfg.Paths.DefaultMeetingsDir)
	assert.Equal(t, 30, cfg.Timing.MatchWindowMinutes)
	assert.Equal(t, 15, cfg.Timing.StartWindowMinutes)
}

func TestValidateRequiresAbsoluteRoots(t *testing.T) {
	cfg := New()
	assert.Error(t, cfg.Validate())

	cfg.Paths.VaultPath = "relative/path"
	cfg.Paths.RecordingsPath = "/abs/recordings"
	assert.Error(t, cfg.Validate())

	cfg.Paths.VaultPath = "/abs/vault"
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("VAULT_PATH", "/tmp/vault")
	t.Setenv("RECORDINGS_PATH", "/tmp/recordings")
	t.Setenv("MEETINGCTL_MATCH_WINDOW_MINUTES", "45")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vault", cfg.Paths.VaultPath)
	assert.Equal(t, "/tmp/recordings", cfg.Paths.RecordingsPath)
	assert.Equal(t, 45, cfg.Timing.MatchWindowMinutes)
	assert.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.State.StateFile)
}

func TestLoadFileThenEnvWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "meetingctl.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[paths]
vault_path = "/from/toml"
recordings_path = "/from/toml/recordings"

[timing]
match_window_minutes = 20
`), 0o644))

	cfg, err := LoadFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "/from/toml", cfg.Paths.VaultPath)
	assert.Equal(t, 20, cfg.Timing.MatchWindowMinutes)

	t.Setenv("VAULT_PATH", "/from/env")
	cfg.applyEnv()
	assert.Equal(t, "/from/env", cfg.Paths.VaultPath)
	assert.Equal(t, 20, cfg.Timing.MatchWindowMinutes)
}

func TestMeetingsRoot(t *testing.T) {
	cfg := New()
	cfg.Paths.VaultPath = "/vault"
	assert.Equal(t, "/vault/meetings", cfg.MeetingsRoot())
}

func TestCalendarCommandsOrder(t *testing.T) {
	cfg := New()
	cmds := cfg.CalendarCommands()
	require.Len(t, cmds, 3)
	assert.Equal(t, cfg.Tools.EventKitCommand, cmds[0])
	assert.Equal(t, cfg.Tools.JXACommand, cmds[1])
	assert.Equal(t, cfg.Tools.ICalBuddyCommand, cmds[2])
}
