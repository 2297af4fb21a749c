package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"MUSE_DB", "MUSE_LOGDIR", "MUSE_PORT", "MUSE_READ_TIMEOUT",
		"MUSE_WRITE_TIMEOUT", "MUSE_MAX_REQUEST_BODY_BYTES",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "MUSE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./ai_runs.db", cfg.DBPath)
	assert.Equal(t, "./logs", cfg.LogDir)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodyBytes)
	assert.Equal(t, "muselog", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MUSE_DB", "/data/runs.db")
	t.Setenv("MUSE_PORT", "9999")
	t.Setenv("MUSE_READ_TIMEOUT", "5s")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/runs.db", cfg.DBPath)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.True(t, cfg.OTELInsecure)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("MUSE_PORT", "not a number")
	t.Setenv("MUSE_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestValidate(t *testing.T) {
	valid := Config{DBPath: "runs.db", Port: 8088, MaxRequestBodyBytes: 1024}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero port", func(c *Config) { c.Port = 0 }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"zero body limit", func(c *Config) { c.MaxRequestBodyBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
