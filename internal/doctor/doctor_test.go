package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunFailsOnMissingVaultRoot(t *testing.T) {
	report := Run(Config{})
	assert.False(t, report.OK)

	var vaultCheck Check
	for _, c := range report.Checks {
		if c.Name == "vault_root" {
			vaultCheck = c
		}
	}
	assert.False(t, vaultCheck.OK)
	assert.NotEmpty(t, vaultCheck.Hint)
}

func TestRunPassesWhenRootsExistAndAbsolute(t *testing.T) {
	dir := t.TempDir()
	report := Run(Config{VaultRoot: dir, RecordingsRoot: dir})

	for _, c := range report.Checks {
		if c.Name == "vault_root" || c.Name == "recordings_root" {
			assert.True(t, c.OK, c.Name)
		}
	}
}

func TestCalendarCheckPassesWhenAnyBinaryResolves(t *testing.T) {
	check := calendarCheck([]string{"", "definitely-not-a-real-binary-xyz", "sh"})
	assert.True(t, check.OK)
	assert.Equal(t, "sh", check.Message)
}

func TestCalendarCheckFailsWhenNoneResolve(t *testing.T) {
	check := calendarCheck([]string{"definitely-not-a-real-binary-xyz"})
	assert.False(t, check.OK)
	assert.NotEmpty(t, check.Hint)
}
