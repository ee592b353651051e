package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Simulation.Iterations)
	assert.Nil(t, cfg.Log.Level)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := writeConfig(t, `
[simulation]
iterations = 5000
seed = 42
output = "plain"

[simulation.main]
min = 1
max = 45
count = 6

[simulation.bonus]
max = 10

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Simulation.Iterations)
	assert.Equal(t, 5000, *cfg.Simulation.Iterations)
	assert.Equal(t, int64(42), *cfg.Simulation.Seed)
	assert.Equal(t, "plain", *cfg.Simulation.Output)
	assert.Equal(t, 45, *cfg.Simulation.Main.Max)
	assert.Equal(t, 6, *cfg.Simulation.Main.Count)
	assert.Nil(t, cfg.Simulation.Bonus.Min)
	assert.Equal(t, 10, *cfg.Simulation.Bonus.Max)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[simulation]\niteration = 10\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation.iteration")
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "[simulation\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to decode config")
}

func TestDefaultConfigPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "lottosim", "config.toml"), DefaultConfigPath())
}
