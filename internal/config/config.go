// Package config loads gateway configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the gateway's runtime settings.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	APIBaseURL     string   `yaml:"api_base_url"`
	RequestTimeout Duration `yaml:"request_timeout"`
	SessionFile    string   `yaml:"session_file"`
	LogLevel       string   `yaml:"log_level"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requests_per_second"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		ListenAddr:     ":8080",
		APIBaseURL:     "http://localhost:8000",
		RequestTimeout: Duration(30 * time.Second),
		SessionFile:    "session.json",
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
	}
	cfg.RateLimit.RequestsPerSecond = 20
	cfg.RateLimit.Burst = 40
	return cfg
}

// Load reads configuration from path, applying defaults for absent fields
// and environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = Duration(30 * time.Second)
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 20
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = cfg.RateLimit.RequestsPerSecond * 2
	}
	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults plus env
// overrides when the file is missing.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = Default()
		applyEnv(cfg)
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOREFRONT_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MARKETPLACE_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = Duration(d)
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimit.RequestsPerSecond = n
		}
	}
}
