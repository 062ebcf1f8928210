package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
  admin_ids: [42]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "storage.db", cfg.Database.Path)
	require.Equal(t, 10*time.Second, cfg.Delivery.RecipientTimeout)
	require.NotEmpty(t, cfg.Scheduler.DailyReset)
	require.NotEmpty(t, cfg.Messages.Welcome)
	require.Equal(t, []int64{42}, cfg.Telegram.AdminIDs)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
telegram:
  token: "123456:test-token"
  admin_ids: [42, 43]
database:
  path: /tmp/other.db
delivery:
  recipient_timeout: 30s
messages:
  welcome: "Hi there!"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/other.db", cfg.Database.Path)
	require.Equal(t, 30*time.Second, cfg.Delivery.RecipientTimeout)
	require.Equal(t, "Hi there!", cfg.Messages.Welcome)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	// No token, no admins.
	_, err := Load(writeConfig(t, `
log:
  level: info
`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `
log:
  level: loud
telegram:
  token: "123456:test-token"
  admin_ids: [42]
`))
	require.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	cfg := TelegramConfig{AdminIDs: []int64{1, 2}}
	require.True(t, cfg.IsAdmin(1))
	require.True(t, cfg.IsAdmin(2))
	require.False(t, cfg.IsAdmin(3))
	require.False(t, TelegramConfig{}.IsAdmin(1))
}

func TestNamesValid(t *testing.T) {
	names := NamesConfig{MinLength: 2, MaxLength: 5}
	require.False(t, names.Valid("a"))
	require.True(t, names.Valid("ab"))
	require.True(t, names.Valid("abcde"))
	require.False(t, names.Valid("abcdef"))
}
