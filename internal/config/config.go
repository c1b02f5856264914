// Package config loads server settings from an optional YAML file and the
// environment. Environment variables win over the file, and the file wins
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitledger/internal/money"
)

// Config holds every server setting.
type Config struct {
	// HTTP server
	Port int `yaml:"port"`

	// Database
	DBPath string `yaml:"db_path"`

	// Auth
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Ledger
	DefaultCurrency string `yaml:"default_currency"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "text" (tint) or "json"

	// AMQP; events are disabled when AMQPURL is empty
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Default returns a Config with sensible defaults for local development.
func Default() *Config {
	return &Config{
		Port:            8080,
		DBPath:          "./data/ledger.db",
		TokenTTL:        24 * time.Hour,
		DefaultCurrency: money.DefaultCurrency,
		LogLevel:        "info",
		LogFormat:       "text",
		AMQPExchange:    "splitledger",
		MetricsEnabled:  true,
	}
}

// Load builds the configuration. It reads a .env file if one exists, then
// the YAML file named by SPLITLEDGER_CONFIG (if set), then the environment.
func Load() (*Config, error) {
	// Optional in production.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("SPLITLEDGER_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults, without consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// mergeEnv overrides fields with any environment variable that is set.
// Malformed numbers and durations are reported rather than ignored.
func (c *Config) mergeEnv() error {
	var problems []string

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("PORT %q is not a number", v))
		}
		c.Port = port
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("TOKEN_TTL %q is not a duration", v))
		}
		c.TokenTTL = ttl
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("METRICS_ENABLED %q is not a boolean", v))
		}
		c.MetricsEnabled = enabled
	}

	setString(&c.DBPath, "DB_PATH")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.DefaultCurrency, "DEFAULT_CURRENCY")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.AMQPURL, "AMQP_URL")
	setString(&c.AMQPExchange, "AMQP_EXCHANGE")

	if len(problems) > 0 {
		return fmt.Errorf("invalid environment:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT secret must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}
	if cur, err := money.NormalizeCurrency(c.DefaultCurrency); err != nil {
		problems = append(problems, fmt.Sprintf("invalid default currency %q: %v", c.DefaultCurrency, err))
	} else {
		c.DefaultCurrency = cur
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q: must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.LogFormat))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
