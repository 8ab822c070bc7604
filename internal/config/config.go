// Package config loads Aurora's bootstrap settings from the environment
// and its durable AppConfig from a JSON file under the user's config
// directory.
package config

import (
	"os"
	"strconv"
)

// Config holds process-level bootstrap options. These are read once at
// startup from the environment; they are distinct from AppConfig, which
// is user-editable through the settings API and persisted to disk.
type Config struct {
	Port      int
	Version   string
	Telemetry TelemetryConfig
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads bootstrap configuration from environment variables with
// sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("AURORA_PORT", 11435),
		Version: envStr("AURORA_VERSION", "0.1.0"),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "aurora"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
