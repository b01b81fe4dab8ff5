package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DEBUG", "LOG_FORMAT", "TIME_CONTROL_SECONDS", "RETENTION",
	"CLOCK_MODE", "TIMEUP_GRACE", "ALLOWED_ORIGINS", "API_KEYS", "MESSAGES_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, int64(600), cfg.TimeControlSeconds)
	assert.Equal(t, time.Hour, cfg.Retention)
	assert.Equal(t, ClockServer, cfg.ClockMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DEBUG", "true")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("TIME_CONTROL_SECONDS", "180")
	t.Setenv("RETENTION", "5m")
	t.Setenv("CLOCK_MODE", "client")
	t.Setenv("TIMEUP_GRACE", "3")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://chess.example.com,")
	t.Setenv("API_KEYS", "k1,k2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, int64(180), cfg.TimeControlSeconds)
	assert.Equal(t, 5*time.Minute, cfg.Retention)
	assert.Equal(t, ClockClient, cfg.ClockMode)
	assert.Equal(t, int64(3), cfg.TimeUpGrace)
	assert.Equal(t, []string{"http://localhost:3000", "https://chess.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
}

func TestLoadReportsEveryInvalidKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")
	t.Setenv("CLOCK_MODE", "sundial")
	t.Setenv("TIME_CONTROL_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "CLOCK_MODE")
	assert.Contains(t, err.Error(), "TIME_CONTROL_SECONDS")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = "0"
	cfg.ClockMode = "sundial"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "clock mode")
}
