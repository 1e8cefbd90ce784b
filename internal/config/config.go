// Package config loads the server configuration from a YAML file with
// TESTOPS_* environment overrides for the values that differ between
// deployments.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Projects ProjectsConfig `yaml:"projects"`
	Dify     DifyConfig     `yaml:"dify"`
	Codex    CodexConfig    `yaml:"codex"`
	Retry    RetryPolicy    `yaml:"retry"`
	Browser  BrowserConfig  `yaml:"browser"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	// Empty addr disables the event bus entirely.
	Addr string `yaml:"addr"`
}

// ProjectsConfig locates the filesystem root that project and task
// directories are created under.
type ProjectsConfig struct {
	Root string `yaml:"root"`
}

type DifyConfig struct {
	BaseURL string `yaml:"base_url"`
	// User identifier sent with uploads and workflow runs.
	User    string `yaml:"user"`
	Timeout string `yaml:"timeout"`
}

func (c DifyConfig) RequestTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

type CodexConfig struct {
	BaseURL string `yaml:"base_url"`
}

// RetryPolicy is the bounded-retry configuration for task execution: up to
// MaxAttempts tries, sleeping BaseDelay before the second attempt and
// multiplying the delay by Multiplier before each further one.
type RetryPolicy struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelay   string `yaml:"base_delay"`
	Multiplier  int    `yaml:"multiplier"`
}

func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts <= 0 {
		return 3
	}
	return p.MaxAttempts
}

func (p RetryPolicy) Delay() time.Duration {
	return parseDuration(p.BaseDelay, 5*time.Second)
}

func (p RetryPolicy) Backoff() int {
	if p.Multiplier <= 0 {
		return 2
	}
	return p.Multiplier
}

type BrowserConfig struct {
	Headless   bool   `yaml:"headless"`
	ProfileDir string `yaml:"profile_dir"`
	NavTimeout string `yaml:"nav_timeout"`
}

func (c BrowserConfig) NavigationTimeout() time.Duration {
	return parseDuration(c.NavTimeout, 60*time.Second)
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Database: DatabaseConfig{
			DSN: "host=localhost user=postgres password=postgres dbname=testops port=5432 sslmode=disable",
		},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Projects: ProjectsConfig{Root: "projects"},
		Dify: DifyConfig{
			BaseURL: "https://api.dify.ai/v1",
			User:    "testops",
			Timeout: "30s",
		},
		Codex: CodexConfig{BaseURL: "https://chat.openai.com/codex"},
		Retry: RetryPolicy{MaxAttempts: 3, BaseDelay: "5s", Multiplier: 2},
		Browser: BrowserConfig{
			Headless:   true,
			ProfileDir: "",
			NavTimeout: "60s",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TESTOPS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TESTOPS_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TESTOPS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TESTOPS_PROJECTS_ROOT"); v != "" {
		cfg.Projects.Root = v
	}
	if v := os.Getenv("TESTOPS_DIFY_BASE_URL"); v != "" {
		cfg.Dify.BaseURL = v
	}
	if v := os.Getenv("TESTOPS_CODEX_BASE_URL"); v != "" {
		cfg.Codex.BaseURL = v
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
