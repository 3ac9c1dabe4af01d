package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "NIGHT", cfg.Asset)
	assert.Equal(t, "duckdb", cfg.Storage.Type)
	assert.Equal(t, 7, cfg.Schedule.DisplayOffsetHours)
	assert.Equal(t, 7*time.Hour, cfg.DisplayOffset())

	timeout, err := cfg.HTTPTimeout()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, timeout)

	interval, err := cfg.PollInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, interval)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"asset": "OWL",
		"market": {"timeout": "5s", "poll_interval": "10s", "candle_limit": 50, "timeframe": "4H"},
		"storage": {"type": "memory"},
		"logging": {"level": "debug", "format": "json", "output": "stdout"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "OWL", cfg.Asset)
	assert.Equal(t, 50, cfg.Market.CandleLimit)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched fields keep their defaults
	assert.Equal(t, 7, cfg.Schedule.DisplayOffsetHours)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THAWTRACK_ASSET", "OWL")
	t.Setenv("THAWTRACK_CANDLE_LIMIT", "75")
	t.Setenv("THAWTRACK_STORAGE_TYPE", "memory")
	t.Setenv("THAWTRACK_LOG_COMPRESS", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "OWL", cfg.Asset)
	assert.Equal(t, 75, cfg.Market.CandleLimit)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.True(t, cfg.Logging.Compress)
}

func TestEnvOverridesIgnoreUnparsable(t *testing.T) {
	t.Setenv("THAWTRACK_CANDLE_LIMIT", "many")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Market.CandleLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"empty asset", func(c *AppConfig) { c.Asset = "" }},
		{"bad timeout", func(c *AppConfig) { c.Market.Timeout = "soon" }},
		{"bad poll interval", func(c *AppConfig) { c.Market.PollInterval = "-" }},
		{"zero candle limit", func(c *AppConfig) { c.Market.CandleLimit = 0 }},
		{"unknown storage", func(c *AppConfig) { c.Storage.Type = "postgres" }},
		{"duckdb without path", func(c *AppConfig) { c.Storage.Path = "" }},
		{"bad log level", func(c *AppConfig) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *AppConfig) { c.Logging.Format = "yaml" }},
		{"file output without path", func(c *AppConfig) { c.Logging.Output = "file" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
