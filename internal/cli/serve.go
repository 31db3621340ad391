package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/insignia/internal/render"
	"github.com/roach88/insignia/internal/viewer"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph viewer over HTTP",
		Long: `Serve the graph viewer.

Open /?vertex-id=<id> to browse the graph; /metrics exposes the
graph store counters.

Example:
  insignia serve --config insignia.yaml --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withEnv(opts.RootOptions, cmd, func(_ context.Context, e *env) error {
				return runServe(ctx, opts, e)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides viewer.listen)")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, e *env) error {
	addr := e.cfg.Viewer.Listen
	if opts.Listen != "" {
		addr = opts.Listen
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              addr,
		Handler:           viewer.NewRouter(render.New(e.graph), e.registry, e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("viewer listening", "addr", addr, "backend", e.cfg.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return commandError("viewer failed", err)
	case <-ctx.Done():
	}

	e.logger.Info("shutting down viewer")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return failure("viewer shutdown failed", err)
	}
	return nil
}
