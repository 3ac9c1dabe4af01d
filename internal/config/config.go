// Package config provides centralized configuration for all thawtrack
// components. Configuration is loaded from defaults, then an optional JSON
// file, then THAWTRACK_* environment variables, in increasing priority.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envPrefix namespaces all environment overrides.
const envPrefix = "THAWTRACK_"

// AppConfig is the complete application configuration.
type AppConfig struct {
	// Asset is the symbol used for quotes and record summaries.
	Asset string `json:"asset" env:"ASSET"`

	Schedule ScheduleConfig `json:"schedule"`
	Market   MarketConfig   `json:"market"`
	Storage  StorageConfig  `json:"storage"`
	Logging  LoggingConfig  `json:"logging"`
}

// ScheduleConfig configures schedule retrieval and normalization.
type ScheduleConfig struct {
	Command string   `json:"command" env:"SCHEDULE_COMMAND"` // Retrieval command to run
	Args    []string `json:"args"`                           // Arguments before the address
	Dir     string   `json:"dir" env:"SCHEDULE_DIR"`         // Working directory for the command

	// DisplayOffsetHours shifts thaw times for regional display. A flat
	// shift, not a timezone conversion.
	DisplayOffsetHours int `json:"display_offset_hours" env:"DISPLAY_OFFSET_HOURS"`
}

// MarketConfig configures the candle and quote HTTP layer.
type MarketConfig struct {
	Timeout      string `json:"timeout" env:"HTTP_TIMEOUT"`            // HTTP request timeout
	PollInterval string `json:"poll_interval" env:"POLL_INTERVAL"`     // Watch-mode refresh interval
	CandleLimit  int    `json:"candle_limit" env:"CANDLE_LIMIT"`       // Candles per fetch
	Timeframe    string `json:"timeframe" env:"TIMEFRAME"`             // Canonical timeframe token
}

// StorageConfig configures the address and history store.
type StorageConfig struct {
	Type string `json:"type" env:"STORAGE_TYPE"` // "duckdb" or "memory"
	Path string `json:"path" env:"STORAGE_PATH"` // Database file path for duckdb
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `json:"level" env:"LOG_LEVEL"`             // debug, info, warn, error
	Format     string `json:"format" env:"LOG_FORMAT"`           // json, text
	Output     string `json:"output" env:"LOG_OUTPUT"`           // stdout, stderr, file
	FilePath   string `json:"file_path" env:"LOG_FILE_PATH"`     // Log file path when output is file
	MaxSizeMB  int    `json:"max_size_mb" env:"LOG_MAX_SIZE"`    // Rotate after this many MB
	MaxBackups int    `json:"max_backups" env:"LOG_MAX_BACKUPS"` // Rotated files to keep
	MaxAgeDays int    `json:"max_age_days" env:"LOG_MAX_AGE"`    // Days to keep rotated files
	Compress   bool   `json:"compress" env:"LOG_COMPRESS"`       // Compress rotated files
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Asset: "NIGHT",
		Schedule: ScheduleConfig{
			DisplayOffsetHours: 7,
		},
		Market: MarketConfig{
			Timeout:      "8s",
			PollInterval: "30s",
			CandleLimit:  200,
			Timeframe:    "1H",
		},
		Storage: StorageConfig{
			Type: "duckdb",
			Path: "thawtrack.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load builds the effective configuration: defaults, then the JSON file at
// path when non-empty, then environment overrides. The result is validated
// before being returned.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Asset, "ASSET")

	setString(&cfg.Schedule.Command, "SCHEDULE_COMMAND")
	setString(&cfg.Schedule.Dir, "SCHEDULE_DIR")
	setInt(&cfg.Schedule.DisplayOffsetHours, "DISPLAY_OFFSET_HOURS")

	setString(&cfg.Market.Timeout, "HTTP_TIMEOUT")
	setString(&cfg.Market.PollInterval, "POLL_INTERVAL")
	setInt(&cfg.Market.CandleLimit, "CANDLE_LIMIT")
	setString(&cfg.Market.Timeframe, "TIMEFRAME")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.Path, "STORAGE_PATH")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Logging.Output, "LOG_OUTPUT")
	setString(&cfg.Logging.FilePath, "LOG_FILE_PATH")
	setInt(&cfg.Logging.MaxSizeMB, "LOG_MAX_SIZE")
	setInt(&cfg.Logging.MaxBackups, "LOG_MAX_BACKUPS")
	setInt(&cfg.Logging.MaxAgeDays, "LOG_MAX_AGE")
	setBool(&cfg.Logging.Compress, "LOG_COMPRESS")
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*target = v
	}
}

func setInt(target *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setBool(target *bool, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// Validate checks the configuration for internal consistency.
func (c *AppConfig) Validate() error {
	if c.Asset == "" {
		return fmt.Errorf("asset symbol cannot be empty")
	}

	if _, err := c.HTTPTimeout(); err != nil {
		return fmt.Errorf("invalid market timeout: %w", err)
	}
	if _, err := c.PollInterval(); err != nil {
		return fmt.Errorf("invalid poll interval: %w", err)
	}
	if c.Market.CandleLimit <= 0 {
		return fmt.Errorf("candle limit must be positive, got %d", c.Market.CandleLimit)
	}

	switch c.Storage.Type {
	case "duckdb":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path required for duckdb")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			return fmt.Errorf("log file path required for file output")
		}
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	return nil
}

// HTTPTimeout returns the parsed market HTTP timeout.
func (c *AppConfig) HTTPTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Market.Timeout)
}

// PollInterval returns the parsed watch-mode refresh interval.
func (c *AppConfig) PollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Market.PollInterval)
}

// DisplayOffset returns the regional display shift as a duration.
func (c *AppConfig) DisplayOffset() time.Duration {
	return time.Duration(c.Schedule.DisplayOffsetHours) * time.Hour
}
