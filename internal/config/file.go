package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with yaml tags and pointer fields so that
// absent keys leave the defaults untouched.
type fileConfig struct {
	Server struct {
		Host      *string `yaml:"host"`
		Port      *int    `yaml:"port"`
		BaseURL   *string `yaml:"base_url"`
		StaticDir *string `yaml:"static_dir"`
		CSRFKey   *string `yaml:"csrf_key"`
	} `yaml:"server"`
	Database struct {
		URL            *string `yaml:"url"`
		MaxConnections *int    `yaml:"max_connections"`
		EventLogPath   *string `yaml:"event_log_path"`
	} `yaml:"database"`
	Session struct {
		TTLHours *int `yaml:"ttl_hours"`
	} `yaml:"session"`
	RateLimit struct {
		LoginPerMinute *int `yaml:"login_per_minute"`
		Burst          *int `yaml:"burst"`
	} `yaml:"rate_limit"`
	Email struct {
		APIKey *string `yaml:"api_key"`
		From   *string `yaml:"from"`
	} `yaml:"email"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
	Environment *string `yaml:"environment"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.Server.Host, file.Server.Host)
	setInt(&cfg.Server.Port, file.Server.Port)
	setString(&cfg.Server.BaseURL, file.Server.BaseURL)
	setString(&cfg.Server.StaticDir, file.Server.StaticDir)
	setString(&cfg.Server.CSRFKey, file.Server.CSRFKey)
	setString(&cfg.Database.URL, file.Database.URL)
	setInt(&cfg.Database.MaxConnections, file.Database.MaxConnections)
	setString(&cfg.Database.EventLogPath, file.Database.EventLogPath)
	if file.Session.TTLHours != nil && *file.Session.TTLHours > 0 {
		cfg.Session.TTL = time.Duration(*file.Session.TTLHours) * time.Hour
	}
	setInt(&cfg.RateLimit.LoginPerMinute, file.RateLimit.LoginPerMinute)
	setInt(&cfg.RateLimit.Burst, file.RateLimit.Burst)
	setString(&cfg.Email.APIKey, file.Email.APIKey)
	setString(&cfg.Email.From, file.Email.From)
	setString(&cfg.Logging.Level, file.Logging.Level)
	setString(&cfg.Logging.Format, file.Logging.Format)
	setString(&cfg.Environment, file.Environment)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
