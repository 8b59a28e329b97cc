package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string // .hcl, .yaml, .yml or .toml
	PagePath     string // HTML page the selectors are evaluated against
	ScriptRoot   string // directory local scripts are read from; defaults to the page directory

	// Manifest setting overrides. Nil keeps the manifest value.
	BasePath           *string
	Dev                *bool
	DisableScriptCache *bool
	Timeout            *time.Duration

	LogFormat  string
	LogLevel   string
	StatusPort int
	NotifyURL  string
}

// NewConfig validates cfg and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("invalid status port %d", cfg.StatusPort)
	}
	if cfg.Timeout != nil && *cfg.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s: must not be negative", *cfg.Timeout)
	}
	if cfg.NotifyURL != "" {
		u, err := url.Parse(cfg.NotifyURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid notify URL %q", cfg.NotifyURL)
		}
	}
	return &cfg, nil
}
