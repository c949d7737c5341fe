package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"summarai/internal/config"
	"summarai/internal/extract"
	"summarai/internal/llm"
	"summarai/internal/logger"
	"summarai/internal/popup"
	"summarai/internal/queue"
	"summarai/internal/render"
	"summarai/internal/session"
	"summarai/internal/settings"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config     config.Config
	Log        *slog.Logger
	Settings   settings.Store
	Sessions   session.Store
	Queue      queue.Queue
	Extractor  extract.Extractor
	LLM        llm.Client
	Controller *popup.Controller

	closers []io.Closer
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	d := Deps{Config: cfg, Log: log}
	var err error
	if d.Settings, err = buildSettings(cfg, log); err != nil {
		return Deps{}, fmt.Errorf("failed to initialize settings: %w", err)
	}
	d.closers = append(d.closers, d.Settings)
	if d.Sessions, err = buildSessions(cfg, log); err != nil {
		d.Close()
		return Deps{}, fmt.Errorf("failed to initialize sessions: %w", err)
	}
	d.closers = append(d.closers, d.Sessions)
	if d.Queue, err = buildQueue(cfg, log); err != nil {
		d.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	d.closers = append(d.closers, d.Queue)
	if d.Extractor, err = buildExtractor(cfg, log); err != nil {
		d.Close()
		return Deps{}, fmt.Errorf("failed to initialize extractor: %w", err)
	}
	if c, ok := d.Extractor.(io.Closer); ok {
		d.closers = append(d.closers, c)
	}
	if d.LLM, err = buildLLM(cfg, log); err != nil {
		d.Close()
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	d.Controller = NewController(d)
	return d, nil
}

// NewController wires a popup controller from deps.
func NewController(d Deps) *popup.Controller {
	writer := render.Typewriter{Delay: d.Config.RenderDelay, BatchSize: render.WordsPerChunk}
	return popup.New(d.LLM, d.Extractor, d.Settings, writer, d.Log)
}

// Close releases every component Build opened.
func (d Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && d.Log != nil {
			d.Log.Warn("failed to close dependency", "err", err)
		}
	}
}

func buildSettings(cfg config.Config, log *slog.Logger) (settings.Store, error) {
	switch cfg.SettingsProvider {
	case "memory":
		log.Info("using in-memory settings")
		return settings.NewMemoryStore(), nil
	case "file":
		st, err := settings.NewFileStore(cfg.SettingsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings file: %w", err)
		}
		log.Info("using file settings", "path", st.Path())
		return st, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SETTINGS_PROVIDER=redis")
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		log.Info("using Redis settings")
		return settings.NewRedisStore(client), nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when SETTINGS_PROVIDER=postgres")
		}
		db, err := settings.NewPostgres(cfg.DBURL, cfg.SettingsTable)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres settings", "table", cfg.SettingsTable)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid SETTINGS_PROVIDER: %s (valid options: memory, file, redis, postgres)", cfg.SettingsProvider)
	}
}

func buildSessions(cfg config.Config, log *slog.Logger) (session.Store, error) {
	switch cfg.SessionProvider {
	case "memory":
		log.Info("using in-memory sessions", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_PROVIDER=redis")
		}
		st, err := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory sessions", "err", err)
			return session.NewMemoryStore(cfg.SessionTTL), nil
		}
		log.Info("using Redis sessions", "ttl", cfg.SessionTTL)
		return st, nil
	default:
		return nil, fmt.Errorf("invalid SESSION_PROVIDER: %s (valid options: memory, redis)", cfg.SessionProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "none":
		return queue.NewNop(), nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue", "subject", queue.SelectionSubject)
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

func buildExtractor(cfg config.Config, log *slog.Logger) (extract.Extractor, error) {
	fetcher := extract.NewHTTPExtractor(log, cfg.FetchTimeout, cfg.MaxPageSize)
	switch cfg.ExtractorProvider {
	case "http":
		return fetcher, nil
	case "playwright":
		browser, err := extract.NewBrowserExtractor(cfg.FetchTimeout, fetcher)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		log.Info("using headless browser extractor")
		return browser, nil
	default:
		return nil, fmt.Errorf("invalid EXTRACTOR_PROVIDER: %s (valid options: http, playwright)", cfg.ExtractorProvider)
	}
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI-compatible LLM client", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid option: openai)", cfg.LLMProvider)
	}
}
