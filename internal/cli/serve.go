package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON and websocket API",
		Long: `Serve the local HTTP API: catalog, cart, checkout and order routes, plus
websocket streams of a user's cart and orders. Stops on SIGINT or SIGTERM.

Examples:
  kantin serve
  kantin serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.HTTP.Addr
				}
				api := httpapi.New(a.repo,
					httpapi.WithLogger(a.logger),
					httpapi.WithCORSOrigins(a.cfg.HTTP.CORSOrigins...))
				return serve(ctx, a, &http.Server{
					Addr:              addr,
					Handler:           api.Handler(),
					ReadHeaderTimeout: 10 * time.Second,
				})
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down. Open websocket
// streams end when the caller closes the repository.
func serve(ctx context.Context, a *app, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "server failed", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	return nil
}
