package cli

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/insignia/internal/config"
	"github.com/roach88/insignia/internal/entity"
	"github.com/roach88/insignia/internal/graphstore"
)

// env is what a command needs to reach the graph.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	graph    *graphstore.Store
	backend  config.Backend
	svc      *entity.Service
	out      *OutputFormatter
}

// loadConfig resolves the effective configuration from --config, --db,
// --verbose and --log-format.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, commandError("failed to load config", err)
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Backend = config.BackendSQLite
		cfg.SQLite.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	return cfg, nil
}

// openEnv loads config and opens the graph. Callers must call close.
func openEnv(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	registry := prometheus.NewRegistry()
	g, backend, err := config.OpenGraph(ctx, cfg, logger, graphstore.NewMetrics(registry))
	if err != nil {
		return nil, commandError("failed to open graph store", err)
	}

	svc := entity.NewService(g, entity.Options{
		Logger:            logger,
		LookupConcurrency: cfg.LookupConcurrency,
	})
	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		graph:    g,
		backend:  backend,
		svc:      svc,
		out: &OutputFormatter{
			Format:  opts.Format,
			Writer:  cmd.OutOrStdout(),
			Verbose: opts.Verbose,
		},
	}, nil
}

func (e *env) close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Error("failed to close backend", "error", err)
	}
}

// fail reports err on the formatter and returns it as an ExitError.
func (e *env) fail(message string, err error) error {
	exitErr := operationError(message, err)
	_ = e.out.Error(exitErr)
	return exitErr
}

// withEnv runs fn with an opened env.
func withEnv(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := openEnv(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(ctx, e)
}
