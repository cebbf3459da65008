package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "calendar.db", cfg.DBPath)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.AllowedOrigins)
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CALENDAR_TZ", "Europe/Paris")
	t.Setenv("SCENARIO", "activity")

	cfg, err := loadConfig([]string{"-port", "9100", "-db", ":memory:", "-cors", "http://a,http://b"})
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port, "flags override the environment")
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "activity", cfg.Scenario)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "http")
	_, err := loadConfig(nil)
	assert.Error(t, err)

	cfg := &Config{Timezone: "Mars/Olympus"}
	_, err = cfg.Location()
	assert.Error(t, err)

	cfg = &Config{Timezone: "Local"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}
