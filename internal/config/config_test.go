package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the env vars without which Load fails outright.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "admin-pass")
	t.Setenv("EMPLOYEE_PASSWORD", "employee-pass")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Source.ListingsPath != "data/listings.json" {
		t.Errorf("Source.ListingsPath = %q", cfg.Source.ListingsPath)
	}
	if cfg.Enrich.CallTimeout != 3*time.Minute {
		t.Errorf("Enrich.CallTimeout = %s, want 3m", cfg.Enrich.CallTimeout)
	}
	if cfg.Enrich.MaxInFlight != 8 {
		t.Errorf("Enrich.MaxInFlight = %d, want 8", cfg.Enrich.MaxInFlight)
	}
	if cfg.Enrich.OpenAIModel != "gpt-4" {
		t.Errorf("Enrich.OpenAIModel = %q, want gpt-4", cfg.Enrich.OpenAIModel)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("Auth.SessionTTL = %s, want 12h", cfg.Auth.SessionTTL)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENRICH_MAX_IN_FLIGHT", "2")
	t.Setenv("ENRICH_CALL_TIMEOUT", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Enrich.MaxInFlight != 2 {
		t.Errorf("Enrich.MaxInFlight = %d, want 2", cfg.Enrich.MaxInFlight)
	}
	if cfg.Enrich.CallTimeout != 30*time.Second {
		t.Errorf("Enrich.CallTimeout = %s, want 30s", cfg.Enrich.CallTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "x")
	t.Setenv("EMPLOYEE_PASSWORD", "x")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded without SESSION_SECRET")
	}
	if !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "not-a-number"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad duration", "ENRICH_CALL_TIMEOUT", "soon"},
		{"zero in-flight", "ENRICH_MAX_IN_FLIGHT", "0"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestValidate_WriteTimeoutVsCallTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_WRITE_TIMEOUT", "1m")
	// Call timeout keeps its 3m default, so a 1m write timeout would cut
	// the on-demand restructure endpoint off mid-call.
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted SERVER_WRITE_TIMEOUT below ENRICH_CALL_TIMEOUT")
	}

	t.Setenv("SERVER_WRITE_TIMEOUT", "0s")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() rejected unlimited write timeout: %v", err)
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.SessionSecret = "super-secret"
	cfg.Enrich.OpenAIAPIKey = "sk-abc123"
	cfg.Enrich.OpenCageAPIKey = "oc-key"

	s := cfg.String()
	for _, secret := range []string{"super-secret", "sk-abc123", "oc-key"} {
		if strings.Contains(s, secret) {
			t.Errorf("String() leaks %q", secret)
		}
	}
}

func TestAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
		{"127.0.0.1", 80, "127.0.0.1:80"},
	}

	for _, tt := range tests {
		sc := ServerConfig{Host: tt.host, Port: tt.port}
		if got := sc.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
