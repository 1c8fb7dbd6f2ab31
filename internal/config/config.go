// Package config handles configuration loading and validation.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// JSTREE_* environment variables (highest priority).
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Default source file and language for the bare `jstree` command.
const (
	DefaultSource   = "./example_files/index.js"
	DefaultLanguage = "javascript"
)

// Config holds all application configuration.
type Config struct {
	// Source is the file printed by the bare jstree command.
	Source string `envconfig:"JSTREE_SOURCE" yaml:"source"`
	// Language selects the grammar.
	Language string `envconfig:"JSTREE_LANGUAGE" yaml:"language"`

	// Root is the project directory for analyze, watch and serve.
	Root string `envconfig:"JSTREE_ROOT" yaml:"root"`
	// DBPath overrides <root>/.jstree/jstree.db.
	DBPath string `envconfig:"JSTREE_DB" yaml:"db"`
	// GrammarDir is searched first for javascript.so in lean builds.
	GrammarDir string `envconfig:"JSTREE_GRAMMAR_DIR" yaml:"grammar_dir"`
	// Workers bounds parallel file analysis.
	Workers int `envconfig:"JSTREE_WORKERS" yaml:"workers"`

	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Host      string  `envconfig:"JSTREE_HOST" yaml:"host"`
	Port      int     `envconfig:"JSTREE_PORT" yaml:"port"`
	RateLimit float64 `envconfig:"JSTREE_RATE_LIMIT" yaml:"rate_limit"` // requests/sec per client, 0 = disabled
	RateBurst int     `envconfig:"JSTREE_RATE_BURST" yaml:"rate_burst"`

	// TrustedProxies lists peer IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means headers are ignored.
	TrustedProxies []string `envconfig:"JSTREE_TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"JSTREE_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"JSTREE_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from an optional YAML file and the environment.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Source:   DefaultSource,
		Language: DefaultLanguage,
		Root:     ".",
		Workers:  4,
		HTTP: HTTPConfig{
			Host:      "127.0.0.1",
			Port:      3000,
			RateLimit: 50,
			RateBurst: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Source) == "" {
		errs = append(errs, "source must not be empty")
	}
	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, "language must not be empty")
	}
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, "root must not be empty")
	}
	if c.Workers < 1 {
		errs = append(errs, "workers must be positive")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, "rate_limit must not be negative")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		errs = append(errs, "rate_burst must be positive when rate_limit is set")
	}
	for _, p := range c.HTTP.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Sprintf("invalid trusted proxy: %q (must be an IP or CIDR)", p))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
