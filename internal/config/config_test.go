package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 5, cfg.Probe.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Sessions.MaxPerCamera)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camarr.yaml")
	content := `
server:
  port: 9090
probe:
  timeout_seconds: 10
sessions:
  max_per_camera: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cm := &ConfigManager{config: DefaultConfig()}
	require.NoError(t, cm.LoadConfig(path))

	cfg := cm.GetConfig()
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Probe.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Sessions.MaxPerCamera)
	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cm := &ConfigManager{config: DefaultConfig()}
	require.NoError(t, cm.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Equal(t, 8084, cm.GetConfig().Server.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camarr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644))

	t.Setenv("CAMARR_PORT", "7000")
	t.Setenv("CAMARR_DATABASE_TYPE", "postgres")
	t.Setenv("CAMARR_ENABLE_CORS", "false")

	cm := &ConfigManager{config: DefaultConfig()}
	require.NoError(t, cm.LoadConfig(path))

	cfg := cm.GetConfig()
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.False(t, cfg.Server.EnableCORS)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"unknown database type", func(c *Config) { c.Database.Type = "oracle" }},
		{"zero probe timeout", func(c *Config) { c.Probe.TimeoutSeconds = 0 }},
		{"zero session limit", func(c *Config) { c.Sessions.MaxPerCamera = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDerivedSQLitePath(t *testing.T) {
	cm := &ConfigManager{config: DefaultConfig()}
	t.Setenv("CAMARR_DATA_DIR", "/tmp/camarr-test")
	require.NoError(t, cm.LoadConfig(""))
	assert.Equal(t, filepath.Join("/tmp/camarr-test", "camarr.db"), cm.GetConfig().Database.Path)
}

func TestWatchersRunOnLoad(t *testing.T) {
	cm := &ConfigManager{config: DefaultConfig()}

	var seen []*Config
	cm.AddWatcher(func(c *Config) { seen = append(seen, c) })

	require.NoError(t, cm.LoadConfig(""))
	require.Len(t, seen, 1)
	assert.Equal(t, cm.GetConfig(), seen[0])
}
