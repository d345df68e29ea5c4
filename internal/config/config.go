// Package config loads server settings from environment variables, with
// development-friendly defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Environment     string
	Port            int
	AllowedOrigins  []string
	RateLimitWindow time.Duration // per-IP HTTP limiter window
	RateLimitMax    int           // max requests per window
	DBPath          string
}

// IsProduction reports whether the server runs with production settings
// (JSON logs, info level).
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the configuration from the environment.
func Load() Config {
	cfg := Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		Port:            getEnvInt("PORT", 3000),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 200),
		DBPath:          getEnv("DB_PATH", "gamerooms.db"),
	}

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
