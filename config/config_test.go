package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-io/tempora/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tempora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
triggers:
  document: '{"intervals":[{"name":"heartbeat","period":"5s"}]}'
attributes:
  backend: redis
  redis:
    host: localhost
    port: "6379"
    prefix: "tempora:"
server:
  port: "9090"
  features:
    health_check:
      enabled: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Attributes.Backend)
	assert.Equal(t, "localhost", cfg.Attributes.Redis.Host)
	assert.Equal(t, "tempora:", cfg.Attributes.Redis.Prefix)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Server.Features.HealthCheck.Enabled)
	assert.NotEmpty(t, cfg.Triggers.Document)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "triggers: {}\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Attributes.Backend)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTriggerDocument(t *testing.T) {
	t.Run("inline document wins", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Triggers.Document = `{"intervals":[]}`
		cfg.Triggers.Path = "/nonexistent"

		doc, err := cfg.TriggerDocument()
		require.NoError(t, err)
		assert.Equal(t, `{"intervals":[]}`, doc)
	})

	t.Run("read from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "triggers.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"ranges":[]}`), 0o600))

		cfg := &config.Config{}
		cfg.Triggers.Path = path

		doc, err := cfg.TriggerDocument()
		require.NoError(t, err)
		assert.Equal(t, `{"ranges":[]}`, doc)
	})

	t.Run("neither configured", func(t *testing.T) {
		cfg := &config.Config{}

		doc, err := cfg.TriggerDocument()
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("unreadable path", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Triggers.Path = filepath.Join(t.TempDir(), "missing.json")

		_, err := cfg.TriggerDocument()
		assert.Error(t, err)
	})
}
