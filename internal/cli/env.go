package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/config"
	"github.com/roach88/trafficlab/internal/console"
	"github.com/roach88/trafficlab/internal/history"
	"github.com/roach88/trafficlab/internal/plan"
)

// environment is everything a command needs to talk to the backend and
// the history. Close it when the command is done.
type environment struct {
	cfg      config.Config
	logger   *slog.Logger
	client   *api.Client
	store    history.Store
	registry *prometheus.Registry
	runner   *plan.Runner
}

// newLogger builds the command logger. Verbose selects debug level.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig resolves the configuration, letting flags win over the file
// and the environment.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, func(c *config.Config) {
		if opts.BaseURL != "" {
			c.BaseURL = opts.BaseURL
		}
		if opts.HistoryBackend != "" {
			c.History.Backend = opts.HistoryBackend
		}
		if opts.HistoryPath != "" {
			c.History.Path = opts.HistoryPath
		}
	})
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// openHistory opens the configured history store.
func openHistory(ctx context.Context, cfg config.Config, logger *slog.Logger) (history.Store, error) {
	opts := cfg.HistoryOptions()
	logger.Debug("opening history", "backend", opts.Backend, "path", opts.Path, "key", opts.Key)
	st, err := history.Open(ctx, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open history", err)
	}
	return st, nil
}

// openEnvironment builds the client, history and runner for a test command.
// The history is skipped when --no-history is set.
func openEnvironment(cmd *cobra.Command, opts *RootOptions) (*environment, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	client, err := api.New(cfg.APIConfig(),
		api.WithLogger(logger),
		api.WithMetrics(api.NewMetrics(registry)),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create client", err)
	}

	env := &environment{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		registry: registry,
	}

	runnerOpts := []plan.RunnerOption{
		plan.WithLogger(logger),
		plan.WithIDGenerator(opts.IDGenerator),
		plan.WithClock(opts.Clock),
	}
	if !opts.Quiet {
		runnerOpts = append(runnerOpts, plan.WithConsole(console.New(cmd.ErrOrStderr(), console.WithLogger(logger))))
	}
	if !opts.NoHistory {
		st, err := openHistory(commandContext(cmd), cfg, logger)
		if err != nil {
			return nil, err
		}
		env.store = st
		runnerOpts = append(runnerOpts, plan.WithHistory(st))
	}

	env.runner = plan.NewRunner(client, runnerOpts...)
	return env, nil
}

// Close exports metrics if configured and releases the history.
func (e *environment) Close() error {
	var errs []error
	if path := e.cfg.MetricsTextfile; path != "" {
		if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
			e.logger.Error("failed to write metrics", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing history", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
