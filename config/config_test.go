package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "ROOM_EVICT_AFTER", "MDNS_ENABLED", "MDNS_INSTANCE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 8080, cfg.PortNumber())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.RoomEvictAfter)
	assert.False(t, cfg.MDNSEnabled)
	assert.False(t, cfg.AllowAnyOrigin())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,* ")
	t.Setenv("ROOM_EVICT_AFTER", "90s")
	t.Setenv("MDNS_ENABLED", "true")
	t.Setenv("MDNS_INSTANCE", "studio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowAnyOrigin())
	assert.Equal(t, 90*time.Second, cfg.RoomEvictAfter)
	assert.True(t, cfg.MDNSEnabled)
	assert.Equal(t, "studio", cfg.MDNSInstance)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port not a number", key: "PORT", value: "http"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "unknown level", key: "LOG_LEVEL", value: "verbose"},
		{name: "bad duration", key: "ROOM_EVICT_AFTER", value: "soon"},
		{name: "negative duration", key: "ROOM_EVICT_AFTER", value: "-1m"},
		{name: "bad bool", key: "MDNS_ENABLED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
