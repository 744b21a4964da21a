package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
engine {
  url = "ws://coach.local:9000"
}

game {
  big_blind = 0.5
}

ui {
  log_level = "debug"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ws://coach.local:9000", cfg.Engine.URL)
	assert.Equal(t, 0.5, cfg.Game.BigBlind)
	assert.Equal(t, "debug", cfg.UI.LogLevel)

	// Unset fields fall back individually
	defaults := Default()
	assert.Equal(t, defaults.Engine.ConnectTimeout, cfg.Engine.ConnectTimeout)
	assert.Equal(t, defaults.Engine.ReplyTimeout, cfg.Engine.ReplyTimeout)
	assert.Equal(t, defaults.Game.StackSize, cfg.Game.StackSize)
	assert.Equal(t, defaults.UI.LogFile, cfg.UI.LogFile)
	assert.Equal(t, defaults.UI.SnapshotFile, cfg.UI.SnapshotFile)
}

func TestLoadRejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `engine { url = `)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"missing engine url", func(c *Config) { c.Engine.URL = "" }, "engine URL"},
		{"bad reply timeout", func(c *Config) { c.Engine.ReplyTimeout = -1 }, "reply timeout"},
		{"bad big blind", func(c *Config) { c.Game.BigBlind = 0 }, "big blind"},
		{"bad log level", func(c *Config) { c.UI.LogLevel = "loud" }, "log level"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pokercoach.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}
