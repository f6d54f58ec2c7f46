package config

import (
	"os"
	"time"
)

// DefaultServerURL points at a locally running backend
const DefaultServerURL = "http://localhost:8000"

// DefaultTimeout bounds each backend request
const DefaultTimeout = 30 * time.Second

type Config struct {
	ServerURL string        // Backend base URL; empty means not set via environment
	Token     string        // Bearer token override from the environment
	Timeout   time.Duration // Per-request timeout
	// Debug flags
	Debug bool // Enables debug logging of every backend call
}

func Load() *Config {
	return &Config{
		ServerURL: getEnv("TRIDENT_SERVER_URL", ""),
		Token:     getEnv("TRIDENT_TOKEN", ""),
		Timeout:   getDuration("TRIDENT_TIMEOUT", DefaultTimeout),
		Debug:     getEnv("TRIDENT_DEBUG", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration from the environment, falling back to
// defaultValue when unset or unparseable
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
