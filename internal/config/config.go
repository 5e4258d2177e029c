// Package config loads trafficlab settings.
//
// Values are layered, later sources winning:
//  1. built-in defaults
//  2. a YAML file (optional)
//  3. TRAFFICLAB_* environment variables
//  4. command-line flags, applied by the cli package
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/history"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TRAFFICLAB_"

// DefaultHistoryPath is where the sqlite history lives when nothing else is configured.
const DefaultHistoryPath = "trafficlab-history.db"

// Config is the full client configuration.
type Config struct {
	// BaseURL is the backend address.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// TargetTimeout is forwarded to the backend for load and capacity tests.
	TargetTimeout time.Duration `yaml:"target_timeout" env:"TARGET_TIMEOUT"`

	// MetricsTextfile, when set, receives client metrics in Prometheus
	// text format after every command.
	MetricsTextfile string `yaml:"metrics_textfile" env:"METRICS_TEXTFILE"`

	History HistoryConfig `yaml:"history" envPrefix:"HISTORY_"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend   string `yaml:"backend" env:"BACKEND"`
	Path      string `yaml:"path" env:"PATH"`
	Key       string `yaml:"key" env:"KEY"`
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL: api.DefaultBaseURL,
		History: HistoryConfig{
			Backend: history.BackendSQLite,
			Path:    DefaultHistoryPath,
			Key:     history.DefaultKey,
		},
	}
}

// Override adjusts a loaded Config before validation, e.g. from flags.
type Override func(*Config)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the environment and overrides, in that order. The result
// is validated.
func Load(path string, overrides ...Override) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decodeYAML(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg, nil); err != nil {
		return Config{}, err
	}

	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays the document in r onto cfg, rejecting unknown fields.
func decodeYAML(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv overlays TRAFFICLAB_* variables onto cfg. Unset variables leave
// fields untouched. environ overrides the process environment when non-nil.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that the configuration can be used to build a client and
// open a history.
func (c Config) Validate() error {
	var errs []error

	if _, err := api.New(api.Config{BaseURL: c.BaseURL, TargetTimeout: c.TargetTimeout}); err != nil {
		errs = append(errs, err)
	}

	switch c.History.Backend {
	case history.BackendSQLite, history.BackendFile:
		if c.History.Path == "" {
			errs = append(errs, fmt.Errorf("history.path is required for the %s backend", c.History.Backend))
		}
	case history.BackendRedis:
		if c.History.RedisAddr == "" {
			errs = append(errs, errors.New("history.redis_addr is required for the redis backend"))
		}
	case history.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("history.backend %q: must be one of %v", c.History.Backend, history.ValidBackends))
	}

	if c.History.Key == "" {
		errs = append(errs, errors.New("history.key must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// APIConfig returns the client settings.
func (c Config) APIConfig() api.Config {
	return api.Config{BaseURL: c.BaseURL, TargetTimeout: c.TargetTimeout}
}

// HistoryOptions returns the store settings.
func (c Config) HistoryOptions() history.Options {
	return history.Options{
		Backend:   c.History.Backend,
		Path:      c.History.Path,
		Key:       c.History.Key,
		RedisAddr: c.History.RedisAddr,
	}
}
