package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Database    DatabaseConfig    `yaml:"database" envPrefix:"DB_"`
	Plan        PlanConfig        `yaml:"plan" envPrefix:"PLAN_"`
	Progression ProgressionConfig `yaml:"progression" envPrefix:"PROGRESSION_"`
	Auth        AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
	Tailscale   TailscaleConfig   `yaml:"tailscale" envPrefix:"TAILSCALE_"`
	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// DatabaseConfig selects the event store. Path is used by the sqlite driver,
// the remaining fields by postgres.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"`
	Path     string `yaml:"path" env:"PATH"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

type PlanConfig struct {
	TemplatePath string `yaml:"template_path" env:"TEMPLATE_PATH"`
	Weeks        int    `yaml:"weeks" env:"WEEKS"`
}

// ProgressionConfig picks the prescription strategy: "feedback" or "static".
type ProgressionConfig struct {
	Strategy         string  `yaml:"strategy" env:"STRATEGY"`
	StaticMultiplier float64 `yaml:"static_multiplier" env:"STATIC_MULTIPLIER"`
}

// AuthConfig protects the write endpoints. An empty key leaves them open.
type AuthConfig struct {
	APIKey string `yaml:"api_key" env:"API_KEY"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Hostname string `yaml:"hostname" env:"HOSTNAME"`
	StateDir string `yaml:"state_dir" env:"STATE_DIR"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Source is what the storage layer opens: the file path for sqlite, the DSN
// for postgres.
func (d DatabaseConfig) Source() string {
	if d.Driver == "postgres" {
		return d.DSN()
	}
	return d.Path
}

// SlogLevel parses the configured log level, falling back to info.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Default returns the configuration used when no file or variable overrides it.
func Default() *Config {
	return &Config{
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:    DatabaseConfig{Driver: "sqlite", Path: "ironlog.db", Port: 5432, SSLMode: "disable"},
		Plan:        PlanConfig{TemplatePath: "template.yaml", Weeks: 4},
		Progression: ProgressionConfig{Strategy: "feedback", StaticMultiplier: 1.025},
		Tailscale:   TailscaleConfig{Hostname: "ironlog", StateDir: "tsnet-state"},
		Log:         LogConfig{Level: "info"},
	}
}

// Load starts from Default, reads the YAML file at path if path is not empty,
// then applies environment variable overrides.
// Env vars use the prefix IRONLOG_ and underscore-separated paths:
//
//	IRONLOG_SERVER_HOST, IRONLOG_SERVER_PORT,
//	IRONLOG_DB_DRIVER, IRONLOG_DB_PATH, IRONLOG_DB_HOST, IRONLOG_DB_PORT,
//	IRONLOG_DB_NAME, IRONLOG_DB_USER, IRONLOG_DB_PASSWORD, IRONLOG_DB_SSLMODE,
//	IRONLOG_PLAN_TEMPLATE_PATH, IRONLOG_PLAN_WEEKS,
//	IRONLOG_PROGRESSION_STRATEGY, IRONLOG_PROGRESSION_STATIC_MULTIPLIER,
//	IRONLOG_AUTH_API_KEY, IRONLOG_TAILSCALE_ENABLED,
//	IRONLOG_TAILSCALE_HOSTNAME, IRONLOG_TAILSCALE_STATE_DIR, IRONLOG_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "IRONLOG_"}); err != nil {
		return nil, fmt.Errorf("parsing env overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Plan.TemplatePath == "" {
		return fmt.Errorf("plan.template_path is required")
	}
	if c.Plan.Weeks <= 0 {
		return fmt.Errorf("plan.weeks must be positive")
	}
	switch c.Progression.Strategy {
	case "feedback", "static":
	default:
		return fmt.Errorf("progression.strategy must be feedback or static, got %q", c.Progression.Strategy)
	}
	if c.Progression.StaticMultiplier <= 0 {
		return fmt.Errorf("progression.static_multiplier must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}
