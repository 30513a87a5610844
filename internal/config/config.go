// Package config provides environment configuration for the planner.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Storage
	DataFile string

	// Planner settings
	Timezone string
	Locale   string

	// CORS
	CORSAllowedOrigins []string

	// Auth settings
	AuthEnabled bool
	JWTSecret   string

	// NATS settings
	NATSEnabled  bool
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	Env      string
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. Values in a .env file
// in the working directory are applied first without overriding the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		// Server
		ServerPort:         getEnv("PORT", "4000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),

		// Storage
		DataFile: getEnv("DATA_FILE", "data/itineraries.json"),

		// Planner
		Timezone: getEnv("PLANNER_TIMEZONE", "UTC"),
		Locale:   getEnv("PLANNER_LOCALE", "und"),

		// CORS
		CORSAllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),

		// Auth
		AuthEnabled: getBoolEnv("AUTH_ENABLED", false),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		// NATS
		NATSEnabled:  getBoolEnv("NATS_ENABLED", false),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		Env:      getEnv("ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return errors.New("DATA_FILE must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid PLANNER_TIMEZONE %q: %w", c.Timezone, err)
	}
	if _, err := c.LanguageTag(); err != nil {
		return fmt.Errorf("invalid PLANNER_LOCALE %q: %w", c.Locale, err)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is true")
	}
	if c.RateLimitRequests <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}

// Location resolves the configured planner time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LanguageTag resolves the configured collation locale.
func (c *Config) LanguageTag() (language.Tag, error) {
	return language.Parse(c.Locale)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
