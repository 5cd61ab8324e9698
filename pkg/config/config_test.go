package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "colorlux", cfg.DeviceID)
	assert.Equal(t, "periph", cfg.Backend)
	assert.Equal(t, 100, cfg.CycleIntervalMs)
	assert.Equal(t, 120, cfg.StabilizationDelayMs)
	assert.Equal(t, 250, cfg.DebounceWindowMs)
	assert.Equal(t, 50, cfg.LowLightThresholdLux)
	assert.Equal(t, 10000, cfg.AlertToneHz)
	assert.Equal(t, 0, cfg.SensorReadRetries)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colorlux.yaml")
	data := []byte("device_id: bench\nbackend: sim\nscenario: scenarios/desk-lamp.yaml\ncycle_interval_ms: 50\nmqtt_enabled: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "bench", cfg.DeviceID)
	assert.Equal(t, "sim", cfg.Backend)
	assert.Equal(t, 50, cfg.CycleIntervalMs)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, path, cfg.ConfigFile)
	// untouched keys keep their defaults
	assert.Equal(t, 120, cfg.StabilizationDelayMs)
	assert.Equal(t, 1883, cfg.MQTTPort)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cycle_interval_ms: [1, 2"), 0o644))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COLORLUX_DEVICE_ID", "kitchen")
	t.Setenv("COLORLUX_LOW_LIGHT_THRESHOLD_LUX", "80")
	t.Setenv("COLORLUX_REDIS_ENABLED", "true")
	t.Setenv("COLORLUX_LATITUDE", "52.52")
	t.Setenv("COLORLUX_CYCLE_INTERVAL_MS", "not-a-number")

	cfg := NewConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "kitchen", cfg.DeviceID)
	assert.Equal(t, 80, cfg.LowLightThresholdLux)
	assert.True(t, cfg.RedisEnabled)
	assert.InDelta(t, 52.52, cfg.Latitude, 1e-9)
	assert.Equal(t, 100, cfg.CycleIntervalMs, "unparsable values are ignored")
}

func TestRegisterFlags(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"--backend=sim", "--scenario=s.yaml", "--alert-tone-hz=4000", "--mqtt-enabled"}))

	assert.Equal(t, "sim", cfg.Backend)
	assert.Equal(t, "s.yaml", cfg.Scenario)
	assert.Equal(t, 4000, cfg.AlertToneHz)
	assert.True(t, cfg.MQTTEnabled)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("COLORLUX_CONFIG", "")
	assert.Equal(t, "", ConfigPath([]string{"--backend=sim"}))
	assert.Equal(t, "a.yaml", ConfigPath([]string{"--backend=sim", "--config", "a.yaml", "--log-level=debug"}))

	t.Setenv("COLORLUX_CONFIG", "env.yaml")
	assert.Equal(t, "env.yaml", ConfigPath(nil))
	assert.Equal(t, "flag.yaml", ConfigPath([]string{"--config=flag.yaml"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty device", func(c *Config) { c.DeviceID = "" }, true},
		{"unknown backend", func(c *Config) { c.Backend = "gpio" }, true},
		{"sim without scenario", func(c *Config) { c.Backend = "sim" }, true},
		{"sim with scenario", func(c *Config) { c.Backend = "sim"; c.Scenario = "x.yaml" }, false},
		{"zero cycle interval", func(c *Config) { c.CycleIntervalMs = 0 }, true},
		{"negative stabilization", func(c *Config) { c.StabilizationDelayMs = -1 }, true},
		{"zero stabilization", func(c *Config) { c.StabilizationDelayMs = 0 }, false},
		{"threshold too high", func(c *Config) { c.LowLightThresholdLux = 70000 }, true},
		{"alert tone too high", func(c *Config) { c.AlertToneHz = 70000 }, true},
		{"negative retries", func(c *Config) { c.SensorReadRetries = -1 }, true},
		{"negative matrix pixels", func(c *Config) { c.MatrixPixels = -1 }, true},
		{"no matrix", func(c *Config) { c.MatrixPixels = 0 }, false},
		{"zero queue size", func(c *Config) { c.TelemetryQueueSize = 0 }, true},
		{"zero history retention", func(c *Config) { c.HistoryRetentionHours = 0 }, true},
		{"negative history retention", func(c *Config) { c.HistoryRetentionHours = -1 }, true},
		{"short history retention", func(c *Config) { c.HistoryRetentionHours = 0.25 }, false},
		{"bad health port", func(c *Config) { c.HealthPort = 0 }, true},
		{"mqtt without broker", func(c *Config) { c.MQTTEnabled = true; c.MQTTBroker = "" }, true},
		{"redis bad port", func(c *Config) { c.RedisEnabled = true; c.RedisPort = 70000 }, true},
		{"postgres without host", func(c *Config) { c.PostgresEnabled = true; c.PostgresHost = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddressHelpers(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTAddress())
	assert.Equal(t, "localhost:6379", cfg.RedisAddress())
	assert.Contains(t, cfg.PostgresConnectionString(), "dbname=colorlux")
	assert.Equal(t, 250*time.Millisecond, Millis(250))
}
