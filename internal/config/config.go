// Package config loads and validates bornir configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/bornir/internal/frontend"
)

// Config represents the complete bornir configuration.
type Config struct {
	// Strict aborts a conversion at the first per-node error.
	Strict bool `yaml:"strict"`
	// Workers is the number of goroutines extracting nodes (0 or 1 = sequential).
	Workers int `yaml:"workers" validate:"min=0,max=256"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`
	// MetricsAddr, when set, exposes Prometheus metrics on this address.
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	// Disabled lists handlers switched off for staged rollout.
	Disabled []HandlerRef `yaml:"disabled" validate:"dive"`
}

// HandlerRef names a registered handler.
type HandlerRef struct {
	Format string `yaml:"format" validate:"required,oneof=onnx tf mxnet"`
	Op     string `yaml:"op" validate:"required"`
}

var validate = validator.New()

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Strict:    false,
		Workers:   1,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Apply disables the configured handlers in r. It must run before r is sealed.
func (c *Config) Apply(r *frontend.Registry) error {
	for _, ref := range c.Disabled {
		if err := r.SetEnabled(ref.Format, ref.Op, false); err != nil {
			return fmt.Errorf("disable %s/%s: %w", ref.Format, ref.Op, err)
		}
	}
	return nil
}
