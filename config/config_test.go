package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
role: controller
transport:
  listen_address: "0.0.0.0:7400"
session:
  max_age: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, RoleController, cfg.Role)
	assert.Equal(t, "0.0.0.0:7400", cfg.Transport.ListenAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1200, cfg.Transport.MaxDatagramSize)
	assert.Equal(t, 5, cfg.Control.MaxAttempts)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.yaml")

	cfg := &Config{Role: RoleNode}
	setDefaults(cfg)

	require.NoError(t, SaveToFile(cfg, path))

	reloaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Role, reloaded.Role)
	assert.Equal(t, cfg.Control.BaseTimeout, reloaded.Control.BaseTimeout)
}

func TestSetDefaultsFillsEverything(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, RoleNode, cfg.Role)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5, cfg.Control.MaxAttempts)
	assert.Equal(t, 5, cfg.Control.DropThreshold)
	assert.Equal(t, "hold_last", cfg.Streaming.JitterStrategy)
}
