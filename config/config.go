// Package config loads cardsplit's process settings from the environment and
// resolves the add-on settings file into a typed Settings value.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/teilomillet/cardsplit/utils"
)

// Config holds process-level settings. The add-on settings that shape a
// split (fields, provider, model, tags) live in Settings instead.
type Config struct {
	ConfigPath  string         `env:"CARDSPLIT_CONFIG" envDefault:"config.json"`
	NotesPath   string         `env:"CARDSPLIT_NOTES" envDefault:"notes.json"`
	Query       string         `env:"CARDSPLIT_QUERY"`
	Timeout     time.Duration  `env:"CARDSPLIT_TIMEOUT" envDefault:"60s"`
	LogLevel    utils.LogLevel `env:"CARDSPLIT_LOG_LEVEL" envDefault:"WARN"`
	LogFormat   string         `env:"CARDSPLIT_LOG_FORMAT" envDefault:"text"`
	DebugDir    string         `env:"CARDSPLIT_DEBUG_DIR"`
	CountTokens bool           `env:"CARDSPLIT_COUNT_TOKENS" envDefault:"false"`
	DryRun      bool           `env:"CARDSPLIT_DRY_RUN" envDefault:"false"`

	// Overrides applied on top of the settings file, usually from flags.
	Provider string `env:"CARDSPLIT_PROVIDER"`
	Model    string `env:"CARDSPLIT_MODEL"`

	Logger utils.Logger
}

// Load reads Config from CARDSPLIT_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

type ConfigOption func(*Config)

func NewConfig() *Config {
	return &Config{
		ConfigPath: "config.json",
		NotesPath:  "notes.json",
		Timeout:    60 * time.Second,
		LogLevel:   utils.LogLevelWarn,
		LogFormat:  "text",
	}
}

func SetConfigPath(path string) ConfigOption {
	return func(c *Config) {
		c.ConfigPath = path
	}
}

func SetNotesPath(path string) ConfigOption {
	return func(c *Config) {
		c.NotesPath = path
	}
}

func SetQuery(query string) ConfigOption {
	return func(c *Config) {
		c.Query = query
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetDryRun(dryRun bool) ConfigOption {
	return func(c *Config) {
		c.DryRun = dryRun
	}
}

func SetLogger(logger utils.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
