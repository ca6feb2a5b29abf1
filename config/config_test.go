package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5222, cfg.Port)
	assert.Equal(t, ":8080", cfg.AdminAddr)
	assert.Equal(t, "hermes.solarisfn.org", cfg.Domain)
	assert.False(t, cfg.Debug)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(
		"host: 127.0.0.1\nport: 5333\ndomain: xmpp.example.org\nbackend_url: http://backend:3551\n",
	), 0o644))

	loader := NewLoader(zap.NewNop())
	cfg, err := loader.Load(file)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5333, cfg.Port)
	assert.Equal(t, "xmpp.example.org", cfg.Domain)
	assert.Equal(t, "http://backend:3551", cfg.BackendURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, ":8080", cfg.AdminAddr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	loader := NewLoader(zap.NewNop())
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HERMES_DOMAIN", "env.example.org")
	t.Setenv("HERMES_PORT", "5224")

	loader := NewLoader(zap.NewNop())
	cfg, err := loader.Load("")
	require.NoError(t, err)

	assert.Equal(t, "env.example.org", cfg.Domain)
	assert.Equal(t, 5224, cfg.Port)
}
