// Package config provides configuration management for the connector.
// It loads configuration from environment variables with sensible defaults
// and validates the result so the process fails fast on a bad deployment.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Optional log file path (default: stdout)
//   - REQUEST_TIMEOUT: Per-request deadline (default: 30s)
//
// Upstream Platform:
//   - ENVIRONMENT: Target environment, "dev" or "prod" (default: dev)
//   - UPSTREAM_ENABLED: Call the upstream platform; false serves mock data (default: false)
//   - UPSTREAM_BASE_URL: Platform REST base URL (required when upstream is enabled)
//   - UPSTREAM_APP_KEY: Platform application key header value (required when upstream is enabled)
//
// OAuth2:
//   - OAUTH_CLIENT_ID: Client-credentials client id (required when upstream is enabled)
//   - OAUTH_CLIENT_SECRET: Client-credentials client secret (required when upstream is enabled)
//
// Inbound Authentication:
//   - AUTH_ENABLED: Require a bearer token on every request (default: true)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the connector
type Config struct {
	// Application settings
	Port           string
	LogLevel       string
	RequestTimeout time.Duration

	// Upstream platform
	Environment     string
	UpstreamEnabled bool
	UpstreamBaseURL string
	UpstreamAppKey  string

	// OAuth2 client credentials
	OAuthClientID     string
	OAuthClientSecret string

	// Inbound authentication
	AuthEnabled bool
}

// Load creates a new Config instance with values from environment variables.
// Call Validate on the result before use.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),

		Environment:     getEnv("ENVIRONMENT", "dev"),
		UpstreamEnabled: getBoolEnv("UPSTREAM_ENABLED", false),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", ""),
		UpstreamAppKey:  getEnv("UPSTREAM_APP_KEY", ""),

		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),

		AuthEnabled: getBoolEnv("AUTH_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required fields, value ranges, and cross-field dependencies
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	switch c.Environment {
	case "dev", "prod":
	default:
		return fmt.Errorf("ENVIRONMENT must be 'dev' or 'prod'")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be a positive duration")
	}

	if c.UpstreamEnabled {
		if c.UpstreamBaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required when UPSTREAM_ENABLED is true")
		}
		if c.UpstreamAppKey == "" {
			return fmt.Errorf("UPSTREAM_APP_KEY is required when UPSTREAM_ENABLED is true")
		}
		if c.OAuthClientID == "" {
			return fmt.Errorf("OAUTH_CLIENT_ID is required when UPSTREAM_ENABLED is true")
		}
		if c.OAuthClientSecret == "" {
			return fmt.Errorf("OAUTH_CLIENT_SECRET is required when UPSTREAM_ENABLED is true")
		}
	}

	return nil
}
