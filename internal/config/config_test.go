package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/gpumond/internal/config"
	"codeberg.org/mutker/gpumond/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 2
history = 30
smi_path = "/opt/cuda/bin/nvidia-smi"
monitor = true
log_level = "debug"
`)
	configPath := filepath.Join(tempDir, "gpumond.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUMOND_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Interval, "Expected Interval 2")
	assert.Equal(t, 30, cfg.History, "Expected History 30")
	assert.Equal(t, "/opt/cuda/bin/nvidia-smi", cfg.SMIPath, "Expected SMIPath from file")
	assert.True(t, cfg.Monitor, "Expected Monitor true")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	// Ensure no config file is used
	t.Setenv("GPUMOND_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 1, cfg.Interval, "Expected default Interval 1")
	assert.Equal(t, 15, cfg.History, "Expected default History 15")
	assert.Equal(t, "nvidia-smi", cfg.SMIPath, "Expected default SMIPath nvidia-smi")
	assert.False(t, cfg.Monitor, "Expected default Monitor false")
	assert.False(t, cfg.Debug, "Expected default Debug false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "gpumond.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUMOND_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "gpumond.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUMOND_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidLogLevel, errors.CodeOf(err))
}

func TestInvalidInterval(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 0
`)
	configPath := filepath.Join(tempDir, "gpumond.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("GPUMOND_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInterval, errors.CodeOf(err))
}

func TestLogLevelFlag(t *testing.T) {
	t.Setenv("GPUMOND_CONFIG", "")

	// Save original args and restore after test
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"cmd", "--log-level", "debug"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel to be set by flag")
}
