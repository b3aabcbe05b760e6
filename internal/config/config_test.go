package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Empty(t, cfg.Namespace)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Controller.Workers)
	assert.Equal(t, 3, cfg.Controller.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Controller.RetryBackoff())
	assert.Equal(t, 60*time.Second, cfg.Controller.HandlerTimeout())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
namespace: mail
logLevel: debug
controller:
  workers: 4
  retryBackoffSeconds: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mail", cfg.Namespace)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Controller.Workers)
	assert.Equal(t, 5*time.Second, cfg.Controller.RetryBackoff())

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 3, cfg.Controller.MaxRetries)
	assert.Equal(t, 60*time.Second, cfg.Controller.HandlerTimeout())
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("controller: ["), 0o644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
