// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Source  SourceConfig
	Enrich  EnrichConfig
	Auth    AuthConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response. The
	// on-demand restructure endpoint waits on the text provider, so
	// this must exceed the enrich call timeout (default: 0 = unlimited)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// SourceConfig holds the data source locations.
type SourceConfig struct {
	// ListingsPath is the JSON backing file for the admin collection
	ListingsPath string `env:"SOURCE_LISTINGS_PATH" default:"data/listings.json"`

	// ValidationSeedPath is the JSON snapshot that lazily seeds the
	// validation collection on first read
	ValidationSeedPath string `env:"SOURCE_VALIDATION_SEED_PATH" default:"data/validation_terenuri.json"`

	// ZoneRegistryPath is the canonical zone registry JSON
	ZoneRegistryPath string `env:"SOURCE_ZONE_REGISTRY_PATH" default:"data/zones.json"`
}

// EnrichConfig holds the external enrichment collaborator settings.
type EnrichConfig struct {
	// OpenCageAPIKey enables geocoding; empty disables it and every
	// geocode degrades to no coordinates
	OpenCageAPIKey string `env:"OPENCAGE_API_KEY"`

	// OpenAIAPIKey enables description restructuring; empty disables
	// it and every restructure degrades to the original text
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// OpenAIModel is the chat completion model (default: gpt-4)
	OpenAIModel string `env:"OPENAI_MODEL" default:"gpt-4"`

	// CallTimeout bounds each individual provider call. The text
	// provider can take low hundreds of seconds (default: 3m)
	CallTimeout time.Duration `env:"ENRICH_CALL_TIMEOUT" default:"3m"`

	// MaxInFlight bounds concurrent provider calls per batch (default: 8)
	MaxInFlight int `env:"ENRICH_MAX_IN_FLIGHT" default:"8"`
}

// AuthConfig holds session and credential settings.
type AuthConfig struct {
	// SessionSecret signs the session token cookie (required)
	SessionSecret string `env:"SESSION_SECRET" required:"true"`

	// SessionTTL is how long a login stays valid (default: 12h)
	SessionTTL time.Duration `env:"SESSION_TTL" default:"12h"`

	// AdminPassword and EmployeePassword are the demo credentials for
	// the two built-in accounts (required)
	AdminPassword    string `env:"ADMIN_PASSWORD" required:"true"`
	EmployeePassword string `env:"EMPLOYEE_PASSWORD" required:"true"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
