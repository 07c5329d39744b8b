package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 15, cfg.WindowSize)
	assert.Equal(t, time.Second, cfg.SampleInterval)
	assert.Equal(t, 15*time.Second, cfg.PredictInterval)
	assert.Equal(t, 20*time.Second, cfg.WiFiAttemptTimeout)
	assert.Equal(t, 5, cfg.WiFiMaxRetries)
	assert.Equal(t, "https://api.thingspeak.com", cfg.ThingSpeakURL)
	assert.False(t, cfg.FirebaseEnabled)
	assert.Equal(t, 10, cfg.FirebaseMaxFails)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WINDOW_SIZE", "30")
	t.Setenv("SAMPLE_INTERVAL", "500ms")
	t.Setenv("WIFI_AUTO_RECONNECT", "false")
	t.Setenv("THINGSPEAK_API_KEY", "WRITEKEY")

	cfg := Load()

	assert.Equal(t, 30, cfg.WindowSize)
	assert.Equal(t, 500*time.Millisecond, cfg.SampleInterval)
	assert.False(t, cfg.WiFiAutoReconnect)
	assert.Equal(t, "WRITEKEY", cfg.ThingSpeakAPIKey)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("WINDOW_SIZE", "fifteen")
	t.Setenv("PREDICT_INTERVAL", "soon")
	t.Setenv("WIFI_SIM_DROP_CHANCE", "high")

	cfg := Load()

	assert.Equal(t, 15, cfg.WindowSize)
	assert.Equal(t, 15*time.Second, cfg.PredictInterval)
	assert.Equal(t, 0.0, cfg.WiFiSimDropChance)
}
