package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/jshost/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Script     string // main module path, or a virtual module token
	Expression string // inline expression to run instead of a main module
	ConfigPath string // explicit settings file; empty means auto-discover

	BasePath  string
	LogFormat string
	LogLevel  string
	Quiet     bool
}

// NewConfig layers the flag-provided values over the settings file and the
// built-in defaults, then validates the result. Flags win over the file, and
// the file wins over defaults.
func NewConfig(ctx context.Context, cfg Config) (*Config, error) {
	path := cfg.ConfigPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			path = config.DefaultFileName
		}
	}

	file := config.Settings{}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		file = *loaded
	}

	flags := config.Settings{
		Script:    cfg.Script,
		BasePath:  cfg.BasePath,
		LogLevel:  cfg.LogLevel,
		LogFormat: cfg.LogFormat,
		Quiet:     cfg.Quiet,
	}
	merged := flags.Merge(file).Merge(config.Defaults)

	cfg.Script = merged.Script
	cfg.BasePath = merged.BasePath
	cfg.LogLevel = merged.LogLevel
	cfg.LogFormat = merged.LogFormat
	cfg.Quiet = merged.Quiet

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	return &cfg, nil
}
