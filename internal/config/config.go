// Package config loads and validates application configuration from
// environment variables. Paths (database file, log directory) are
// resolved here and passed explicitly to components; nothing reads the
// environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Storage settings.
	DBPath string // SQLite database file.
	LogDir string // Per-day NDJSON append log directory; empty disables it.

	// Server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxRequestBodyBytes int64

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		DBPath:              envStr("MUSE_DB", "./ai_runs.db"),
		LogDir:              envStr("MUSE_LOGDIR", "./logs"),
		Port:                envInt("MUSE_PORT", 8088),
		ReadTimeout:         envDuration("MUSE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("MUSE_WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBodyBytes: int64(envInt("MUSE_MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "muselog"),
		LogLevel:            envStr("MUSE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: MUSE_DB is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: MUSE_PORT must be in 1..65535")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: MUSE_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
