package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "embedded", cfg.Reference.Source)
	assert.Equal(t, DefaultMaxConcurrency, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, DefaultCacheTTL, cfg.Pipeline.CacheTTL)
	assert.Equal(t, DefaultDisclaimerMinLength, cfg.Chat.DisclaimerMinLength)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Pipeline.OracleTimeout = 5 * time.Second
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.OracleTimeout)
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "production" }},
		{"bad reference source", func(c *Config) { c.Reference.Source = "sqlite" }},
		{"postgres without host", func(c *Config) {
			c.Reference.Source = "postgres"
			c.Database.Host = ""
		}},
		{"redis enabled without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}},
		{"zero concurrency", func(c *Config) { c.Pipeline.MaxConcurrency = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: 9090\nchat:\n  max_history_turns: 6\n"), 0o644))

	t.Setenv("K12CHECK_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, 6, cfg.Chat.MaxHistoryTurns)
	assert.Equal(t, "release", cfg.Server.Mode, "defaults fill the rest")
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
