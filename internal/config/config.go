// Package config loads CLI and server settings from WMATA_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New("config: api key is required (set WMATA_API_KEY or api_key)")

// Config holds application configuration.
type Config struct {
	APIKey      string        `envconfig:"API_KEY"      yaml:"api_key"`
	BaseURL     string        `envconfig:"BASE_URL"     yaml:"base_url"     default:"http://api.wmata.com" validate:"required,url,startswith=http"`
	APIVersion  string        `envconfig:"API_VERSION"  yaml:"api_version"  default:"1"                    validate:"required"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" yaml:"http_timeout" default:"30s"                  validate:"gt=0"`
	LogLevel    string        `envconfig:"LOG_LEVEL"    yaml:"log_level"    default:"info"                 validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Debug       bool          `envconfig:"DEBUG"        yaml:"debug"`
	MCPName     string        `envconfig:"MCP_NAME"     yaml:"mcp_name"     default:"wmata"                validate:"required"`
	MockAddr    string        `envconfig:"MOCK_ADDR"    yaml:"mock_addr"    default:":8089"                validate:"required"`
}

// Load reads defaults and WMATA_* environment variables. When path is not
// empty, fields present in that YAML file override them. The result is
// validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("WMATA", &cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// RequireAPIKey fails when commands that call the live API have no key.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Init configures logging and reports the loaded settings.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(ParseLevel(c.LogLevel))

	log.Debug().
		Str("base_url", c.BaseURL).
		Str("api_version", c.APIVersion).
		Bool("api_key_set", c.APIKey != "").
		Dur("http_timeout", c.HTTPTimeout).
		Str("log_level", c.LogLevel).
		Msg("configuration loaded")
}

// ParseLevel maps a level name onto zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO":
		return zerolog.InfoLevel
	case "warn", "WARN":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
