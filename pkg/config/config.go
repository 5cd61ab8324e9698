package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a colorlux device
type Config struct {
	// ConfigFile is the YAML file the settings were loaded from
	ConfigFile string `yaml:"-"`

	// Service configuration
	DeviceID   string `yaml:"device_id"`
	Backend    string `yaml:"backend"`
	Scenario   string `yaml:"scenario"`
	HealthPort int    `yaml:"health_port"`
	LogLevel   string `yaml:"log_level"`

	// Sensing loop configuration
	CycleIntervalMs      int `yaml:"cycle_interval_ms"`
	StabilizationDelayMs int `yaml:"stabilization_delay_ms"`
	DebounceWindowMs     int `yaml:"debounce_window_ms"`
	BootSplashDelayMs    int `yaml:"boot_splash_delay_ms"`
	LowLightThresholdLux int `yaml:"low_light_threshold_lux"`
	ColorToneDurationMs  int `yaml:"color_tone_duration_ms"`
	AlertToneHz          int `yaml:"alert_tone_hz"`
	AlertPulseMs         int `yaml:"alert_pulse_ms"`
	AlertGapMs           int `yaml:"alert_gap_ms"`
	SensorReadRetries    int `yaml:"sensor_read_retries"`

	// Location for daylight context
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// MQTT configuration
	MQTTEnabled            bool   `yaml:"mqtt_enabled"`
	MQTTBroker             string `yaml:"mqtt_broker"`
	MQTTPort               int    `yaml:"mqtt_port"`
	MQTTUser               string `yaml:"mqtt_user"`
	MQTTPassword           string `yaml:"mqtt_password"`
	MQTTClientID           string `yaml:"mqtt_client_id"`
	TelemetryMinIntervalMs int    `yaml:"telemetry_min_interval_ms"`
	TelemetryQueueSize     int    `yaml:"telemetry_queue_size"`

	// Redis configuration
	RedisEnabled          bool    `yaml:"redis_enabled"`
	RedisHost             string  `yaml:"redis_host"`
	RedisPort             int     `yaml:"redis_port"`
	RedisPassword         string  `yaml:"redis_password"`
	RedisDB               int     `yaml:"redis_db"`
	HistoryRetentionHours float64 `yaml:"history_retention_hours"`

	// Postgres configuration
	PostgresEnabled            bool          `yaml:"postgres_enabled"`
	PostgresHost               string        `yaml:"postgres_host"`
	PostgresPort               int           `yaml:"postgres_port"`
	PostgresUser               string        `yaml:"postgres_user"`
	PostgresPassword           string        `yaml:"postgres_password"`
	PostgresDB                 string        `yaml:"postgres_db"`
	PostgresSSLMode            string        `yaml:"postgres_sslmode"`
	PostgresMaxConnections     int           `yaml:"postgres_max_connections"`
	PostgresMaxIdleConnections int           `yaml:"postgres_max_idle_connections"`
	PostgresConnMaxLifetime    time.Duration `yaml:"postgres_conn_max_lifetime"`

	// periph backend wiring (names as registered in periph.io registries)
	ColorBus     string `yaml:"color_bus"`
	LightBus     string `yaml:"light_bus"`
	DisplayBus   string `yaml:"display_bus"`
	MatrixSPI    string `yaml:"matrix_spi"`
	MatrixPixels int    `yaml:"matrix_pixels"`
	PinRed       string `yaml:"pin_red"`
	PinGreen     string `yaml:"pin_green"`
	PinBlue      string `yaml:"pin_blue"`
	PinBuzzerA   string `yaml:"pin_buzzer_a"`
	PinBuzzerB   string `yaml:"pin_buzzer_b"`
	PinButtonA   string `yaml:"pin_button_a"`
	PinButtonB   string `yaml:"pin_button_b"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DeviceID:   "colorlux",
		Backend:    "periph",
		HealthPort: 8080,
		LogLevel:   "info",

		CycleIntervalMs:      100,
		StabilizationDelayMs: 120,
		DebounceWindowMs:     250,
		BootSplashDelayMs:    2000,
		LowLightThresholdLux: 50,
		ColorToneDurationMs:  150,
		AlertToneHz:          10000,
		AlertPulseMs:         200,
		AlertGapMs:           200,
		SensorReadRetries:    0,

		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,

		MQTTBroker:             "localhost",
		MQTTPort:               1883,
		TelemetryMinIntervalMs: 1000,
		TelemetryQueueSize:     64,

		RedisHost:             "localhost",
		RedisPort:             6379,
		HistoryRetentionHours: 1.0,

		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "colorlux",
		PostgresDB:                 "colorlux",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     5,
		PostgresMaxIdleConnections: 2,
		PostgresConnMaxLifetime:    30 * time.Minute,

		ColorBus:     "",
		LightBus:     "",
		DisplayBus:   "",
		MatrixSPI:    "",
		MatrixPixels: 25,
		PinRed:       "GPIO13",
		PinGreen:     "GPIO12",
		PinBlue:      "GPIO18",
		PinBuzzerA:   "GPIO19",
		PinBuzzerB:   "GPIO26",
		PinButtonA:   "GPIO5",
		PinButtonB:   "GPIO6",
	}
}

// LoadFromFile overlays values from a YAML file. Keys absent from the file keep their current value.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	c.ConfigFile = path

	return nil
}

// LoadFromEnv loads configuration from environment variables with COLORLUX_ prefix
func (c *Config) LoadFromEnv() {
	// Service configuration
	envString("COLORLUX_DEVICE_ID", &c.DeviceID)
	envString("COLORLUX_BACKEND", &c.Backend)
	envString("COLORLUX_SCENARIO", &c.Scenario)
	envInt("COLORLUX_HEALTH_PORT", &c.HealthPort)
	envString("COLORLUX_LOG_LEVEL", &c.LogLevel)

	// Sensing loop
	envInt("COLORLUX_CYCLE_INTERVAL_MS", &c.CycleIntervalMs)
	envInt("COLORLUX_STABILIZATION_DELAY_MS", &c.StabilizationDelayMs)
	envInt("COLORLUX_DEBOUNCE_WINDOW_MS", &c.DebounceWindowMs)
	envInt("COLORLUX_BOOT_SPLASH_DELAY_MS", &c.BootSplashDelayMs)
	envInt("COLORLUX_LOW_LIGHT_THRESHOLD_LUX", &c.LowLightThresholdLux)
	envInt("COLORLUX_COLOR_TONE_DURATION_MS", &c.ColorToneDurationMs)
	envInt("COLORLUX_ALERT_TONE_HZ", &c.AlertToneHz)
	envInt("COLORLUX_ALERT_PULSE_MS", &c.AlertPulseMs)
	envInt("COLORLUX_ALERT_GAP_MS", &c.AlertGapMs)
	envInt("COLORLUX_SENSOR_READ_RETRIES", &c.SensorReadRetries)

	envFloat("COLORLUX_LATITUDE", &c.Latitude)
	envFloat("COLORLUX_LONGITUDE", &c.Longitude)

	// MQTT configuration
	envBool("COLORLUX_MQTT_ENABLED", &c.MQTTEnabled)
	envString("COLORLUX_MQTT_BROKER", &c.MQTTBroker)
	envInt("COLORLUX_MQTT_PORT", &c.MQTTPort)
	envString("COLORLUX_MQTT_USER", &c.MQTTUser)
	envString("COLORLUX_MQTT_PASSWORD", &c.MQTTPassword)
	envString("COLORLUX_MQTT_CLIENT_ID", &c.MQTTClientID)
	envInt("COLORLUX_TELEMETRY_MIN_INTERVAL_MS", &c.TelemetryMinIntervalMs)
	envInt("COLORLUX_TELEMETRY_QUEUE_SIZE", &c.TelemetryQueueSize)

	// Redis configuration
	envBool("COLORLUX_REDIS_ENABLED", &c.RedisEnabled)
	envString("COLORLUX_REDIS_HOST", &c.RedisHost)
	envInt("COLORLUX_REDIS_PORT", &c.RedisPort)
	envString("COLORLUX_REDIS_PASSWORD", &c.RedisPassword)
	envInt("COLORLUX_REDIS_DB", &c.RedisDB)
	envFloat("COLORLUX_HISTORY_RETENTION_HOURS", &c.HistoryRetentionHours)

	// Postgres configuration
	envBool("COLORLUX_POSTGRES_ENABLED", &c.PostgresEnabled)
	envString("COLORLUX_POSTGRES_HOST", &c.PostgresHost)
	envInt("COLORLUX_POSTGRES_PORT", &c.PostgresPort)
	envString("COLORLUX_POSTGRES_USER", &c.PostgresUser)
	envString("COLORLUX_POSTGRES_PASSWORD", &c.PostgresPassword)
	envString("COLORLUX_POSTGRES_DB", &c.PostgresDB)
	envString("COLORLUX_POSTGRES_SSLMODE", &c.PostgresSSLMode)

	// periph wiring
	envString("COLORLUX_COLOR_BUS", &c.ColorBus)
	envString("COLORLUX_LIGHT_BUS", &c.LightBus)
	envString("COLORLUX_DISPLAY_BUS", &c.DisplayBus)
	envString("COLORLUX_MATRIX_SPI", &c.MatrixSPI)
	envInt("COLORLUX_MATRIX_PIXELS", &c.MatrixPixels)
	envString("COLORLUX_PIN_RED", &c.PinRed)
	envString("COLORLUX_PIN_GREEN", &c.PinGreen)
	envString("COLORLUX_PIN_BLUE", &c.PinBlue)
	envString("COLORLUX_PIN_BUZZER_A", &c.PinBuzzerA)
	envString("COLORLUX_PIN_BUZZER_B", &c.PinBuzzerB)
	envString("COLORLUX_PIN_BUTTON_A", &c.PinButtonA)
	envString("COLORLUX_PIN_BUTTON_B", &c.PinButtonB)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// RegisterFlags binds every setting to a flag on fs, using the current values as defaults
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	// Service flags
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file (loaded before env and flags)")
	fs.StringVar(&c.DeviceID, "device-id", c.DeviceID, "Device identifier used in topics and storage keys")
	fs.StringVar(&c.Backend, "backend", c.Backend, "Hardware backend (periph, sim)")
	fs.StringVar(&c.Scenario, "scenario", c.Scenario, "Scenario YAML for the sim backend")
	fs.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Sensing loop flags
	fs.IntVar(&c.CycleIntervalMs, "cycle-interval-ms", c.CycleIntervalMs, "Pause between sensing cycles (ms)")
	fs.IntVar(&c.StabilizationDelayMs, "stabilization-delay-ms", c.StabilizationDelayMs, "Pause after a reference change before sampling (ms)")
	fs.IntVar(&c.DebounceWindowMs, "debounce-window-ms", c.DebounceWindowMs, "Minimum time between accepted button presses (ms)")
	fs.IntVar(&c.BootSplashDelayMs, "boot-splash-delay-ms", c.BootSplashDelayMs, "How long the boot splash stays on screen (ms)")
	fs.IntVar(&c.LowLightThresholdLux, "low-light-threshold", c.LowLightThresholdLux, "Lux below which the low-light alert fires")
	fs.IntVar(&c.ColorToneDurationMs, "color-tone-ms", c.ColorToneDurationMs, "Duration of the colour cue tone (ms)")
	fs.IntVar(&c.AlertToneHz, "alert-tone-hz", c.AlertToneHz, "Frequency of the low-light alert tone (Hz)")
	fs.IntVar(&c.AlertPulseMs, "alert-pulse-ms", c.AlertPulseMs, "Duration of each alert pulse (ms)")
	fs.IntVar(&c.AlertGapMs, "alert-gap-ms", c.AlertGapMs, "Silence between alert pulses (ms)")
	fs.IntVar(&c.SensorReadRetries, "sensor-read-retries", c.SensorReadRetries, "Extra attempts for a failed sensor read within one cycle")
	fs.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude for daylight calculation")
	fs.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude for daylight calculation")

	// MQTT flags
	fs.BoolVar(&c.MQTTEnabled, "mqtt-enabled", c.MQTTEnabled, "Publish telemetry and accept remote button presses over MQTT")
	fs.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	fs.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	fs.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	fs.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")
	fs.IntVar(&c.TelemetryMinIntervalMs, "telemetry-min-interval-ms", c.TelemetryMinIntervalMs, "Minimum time between state snapshots (ms)")
	fs.IntVar(&c.TelemetryQueueSize, "telemetry-queue-size", c.TelemetryQueueSize, "Pending telemetry messages before dropping")

	// Redis flags
	fs.BoolVar(&c.RedisEnabled, "redis-enabled", c.RedisEnabled, "Store reading history in Redis")
	fs.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	fs.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	fs.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	fs.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")
	fs.Float64Var(&c.HistoryRetentionHours, "history-retention-hours", c.HistoryRetentionHours, "How long readings are kept (hours)")

	// Postgres flags
	fs.BoolVar(&c.PostgresEnabled, "postgres-enabled", c.PostgresEnabled, "Record calibration anchors and colour events in Postgres")
	fs.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	fs.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	fs.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres user")
	fs.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	fs.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database")
	fs.StringVar(&c.PostgresSSLMode, "postgres-sslmode", c.PostgresSSLMode, "Postgres sslmode")

	// periph flags
	fs.StringVar(&c.ColorBus, "color-bus", c.ColorBus, "I2C bus of the colour sensor (empty = first)")
	fs.StringVar(&c.LightBus, "light-bus", c.LightBus, "I2C bus of the light sensor (empty = first)")
	fs.StringVar(&c.DisplayBus, "display-bus", c.DisplayBus, "I2C bus of the display (empty = first)")
	fs.StringVar(&c.MatrixSPI, "matrix-spi", c.MatrixSPI, "SPI port driving the LED matrix (empty = first)")
	fs.IntVar(&c.MatrixPixels, "matrix-pixels", c.MatrixPixels, "Number of LEDs in the matrix")
	fs.StringVar(&c.PinRed, "pin-red", c.PinRed, "PWM pin of the red indicator channel")
	fs.StringVar(&c.PinGreen, "pin-green", c.PinGreen, "PWM pin of the green indicator channel")
	fs.StringVar(&c.PinBlue, "pin-blue", c.PinBlue, "PWM pin of the blue indicator channel")
	fs.StringVar(&c.PinBuzzerA, "pin-buzzer-a", c.PinBuzzerA, "PWM pin of the colour cue buzzer")
	fs.StringVar(&c.PinBuzzerB, "pin-buzzer-b", c.PinBuzzerB, "PWM pin of the alert buzzer")
	fs.StringVar(&c.PinButtonA, "pin-button-a", c.PinButtonA, "Input pin of the reference button")
	fs.StringVar(&c.PinButtonB, "pin-button-b", c.PinButtonB, "Input pin of the reset button")
}

// ConfigPath finds the config file named by --config in args, falling back to COLORLUX_CONFIG.
// Every other flag is ignored so the file can be loaded before env and flags are applied.
func ConfigPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	path := fs.String("config", os.Getenv("COLORLUX_CONFIG"), "")
	_ = fs.Parse(args)
	return *path
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	c.RegisterFlags(pflag.CommandLine)
	pflag.Parse()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}
	switch c.Backend {
	case "periph":
	case "sim":
		if c.Scenario == "" {
			return fmt.Errorf("sim backend requires a scenario file")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be periph or sim)", c.Backend)
	}

	positive := map[string]int{
		"cycle interval":       c.CycleIntervalMs,
		"debounce window":      c.DebounceWindowMs,
		"colour tone duration": c.ColorToneDurationMs,
		"alert tone frequency": c.AlertToneHz,
		"alert pulse":          c.AlertPulseMs,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.StabilizationDelayMs < 0 || c.BootSplashDelayMs < 0 || c.AlertGapMs < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.AlertToneHz > 65535 {
		return fmt.Errorf("alert tone frequency must fit in 16 bits")
	}
	if c.LowLightThresholdLux < 0 || c.LowLightThresholdLux > 65535 {
		return fmt.Errorf("low light threshold must be between 0 and 65535")
	}
	if c.SensorReadRetries < 0 {
		return fmt.Errorf("sensor read retries must not be negative")
	}
	if c.MatrixPixels < 0 {
		return fmt.Errorf("matrix pixels must not be negative")
	}
	if c.TelemetryQueueSize <= 0 {
		return fmt.Errorf("telemetry queue size must be positive")
	}
	if c.HistoryRetentionHours <= 0 {
		return fmt.Errorf("history retention must be positive")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}

	if c.MQTTEnabled {
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT broker is required")
		}
		if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
			return fmt.Errorf("MQTT port must be between 1 and 65535")
		}
	}
	if c.RedisEnabled {
		if c.RedisHost == "" {
			return fmt.Errorf("Redis host is required")
		}
		if c.RedisPort <= 0 || c.RedisPort > 65535 {
			return fmt.Errorf("Redis port must be between 1 and 65535")
		}
	}
	if c.PostgresEnabled && c.PostgresHost == "" {
		return fmt.Errorf("Postgres host is required")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns the lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}

// Millis converts a millisecond setting to a time.Duration
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
