// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	// Addr is the listen address (e.g., ":8080").
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// JWTSecret signs session tokens. Required outside of tests.
	JWTSecret string

	// TokenTTL is how long session tokens remain valid.
	TokenTTL time.Duration

	// LogLevel is debug, info, warn, or error.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      getEnvOrDefault("ADDR", ":8080"),
		DBPath:    getEnvOrDefault("DB_PATH", "./data/huddle.db"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
	}

	ttl := getEnvOrDefault("TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttl, err)
	}
	cfg.TokenTTL = d

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns the trimmed environment value, or the default when
// unset or blank.
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
