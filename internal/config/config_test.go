package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"SettingsProvider", cfg.SettingsProvider, "memory"},
		{"SettingsTable", cfg.SettingsTable, "settings"},
		{"SessionProvider", cfg.SessionProvider, "memory"},
		{"SessionTTL", cfg.SessionTTL, 30 * time.Minute},
		{"QueueProvider", cfg.QueueProvider, "none"},
		{"ExtractorProvider", cfg.ExtractorProvider, "http"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMBaseURL", cfg.LLMBaseURL, "https://api.groq.com/openai/v1/"},
		{"LLMModel", cfg.LLMModel, "mixtral-8x7b-32768"},
		{"RenderDelay", cfg.RenderDelay, 10 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("RENDER_DELAY", "0s")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("expected session ttl 5m, got %s", cfg.SessionTTL)
	}
	if cfg.RenderDelay != 0 {
		t.Errorf("expected no render delay, got %s", cfg.RenderDelay)
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	t.Setenv("SETTINGS_PROVIDER", "postgres")
	t.Setenv("QUEUE_PROVIDER", "nats")

	cfg := Load()

	if cfg.SettingsProvider != "postgres" {
		t.Errorf("expected settings provider 'postgres', got %s", cfg.SettingsProvider)
	}
	if cfg.QueueProvider != "nats" {
		t.Errorf("expected queue provider 'nats', got %s", cfg.QueueProvider)
	}
}
