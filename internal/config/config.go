package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Settings store (credential + theme)
	SettingsProvider string `env:"SETTINGS_PROVIDER" envDefault:"memory"` // "memory", "file", "redis" or "postgres"
	SettingsFile     string `env:"SETTINGS_FILE"`
	SettingsTable    string `env:"SETTINGS_TABLE" envDefault:"settings"`
	DBURL            string `env:"DB_URL"`

	// Popup sessions
	SessionProvider string        `env:"SESSION_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`

	// Context-menu selection events
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "nats" or "none"
	QueueURL      string `env:"QUEUE_URL"`

	// Page content
	ExtractorProvider string        `env:"EXTRACTOR_PROVIDER" envDefault:"http"` // "http" or "playwright"
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"20s"`
	MaxPageSize       int64         `env:"MAX_PAGE_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"` // any OpenAI-compatible endpoint
	LLMBaseURL  string `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1/"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"mixtral-8x7b-32768"`

	// Typing effect
	RenderDelay time.Duration `env:"RENDER_DELAY" envDefault:"10ms"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
