package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/driftwood-collective/server/internal/validation"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	Email       EmailConfig
	Logging     LoggingConfig
	Tracing     TracingConfig
	Environment string
}

type ServerConfig struct {
	Host      string
	Port      int
	BaseURL   string
	StaticDir string
	CSRFKey   string
}

type DatabaseConfig struct {
	// URL is optional: when empty the server runs on the in-memory
	// stores and the file-backed event log.
	URL            string
	MaxConnections int
	EventLogPath   string
}

type SessionConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	LoginPerMinute int
	Burst          int
}

type EmailConfig struct {
	APIKey string
	From   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled    bool
	SampleRate float64
}

// Load builds configuration from environment variables, optionally
// overlaid on a YAML file when path is non-empty. Environment
// variables win over file values.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
	}
	applyEnv(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("session TTL must be positive")
	}
	if err := validation.ValidateURL(cfg.Server.BaseURL, "base_url", cfg.Environment == "production"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			BaseURL:   "http://localhost:8080",
			StaticDir: "web/public",
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
			EventLogPath:   "data/events.jsonl",
		},
		Session: SessionConfig{
			TTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: 10,
			Burst:          5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			SampleRate: 1.0,
		},
		Environment: "development",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("SERVER_BASE_URL", cfg.Server.BaseURL)
	cfg.Server.StaticDir = getEnv("SERVER_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Server.CSRFKey = getEnv("CSRF_KEY", cfg.Server.CSRFKey)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)
	cfg.Database.EventLogPath = getEnv("EVENT_LOG_PATH", cfg.Database.EventLogPath)
	if hours := getEnvInt("SESSION_TTL_HOURS", 0); hours > 0 {
		cfg.Session.TTL = time.Duration(hours) * time.Hour
	}
	cfg.RateLimit.LoginPerMinute = getEnvInt("RATE_LIMIT_LOGIN", cfg.RateLimit.LoginPerMinute)
	cfg.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	cfg.Email.APIKey = getEnv("RESEND_API_KEY", cfg.Email.APIKey)
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.From)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	if getEnv("TRACING_ENABLED", "") == "true" {
		cfg.Tracing.Enabled = true
	}
	if raw := getEnv("TRACING_SAMPLE_RATE", ""); raw != "" {
		if rate, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Tracing.SampleRate = rate
		}
	}
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
