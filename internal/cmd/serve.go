package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/detect"
	"github.com/ordinex/ordinex/internal/health"
	"github.com/ordinex/ordinex/internal/server"
	"github.com/ordinex/ordinex/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		address string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing detection and mission breakdown.

API:
  POST /v1/plans/detect                 score a plan
  POST /v1/plans/breakdown              generate (and store) a breakdown
  GET  /v1/breakdowns/{id}              fetch a breakdown
  GET  /v1/plans/{planId}/breakdowns    list a plan's breakdowns

Operations:
  /health/live, /health/ready, /health/startup, /healthz
  /metrics                              Prometheus metrics

SIGINT or SIGTERM fail readiness first and then drain in-flight requests for
up to server.shutdown_timeout.

Examples:
  ordinex serve
  ordinex serve --address 0.0.0.0 --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := a.cfg.Server
			if cmd.Flags().Changed("address") {
				sc.Address = address
			}
			if cmd.Flags().Changed("port") {
				sc.Port = port
			}

			p, err := a.pipeline()
			if err != nil {
				return err
			}

			pm := health.NewProbeManager(version.Version)
			pm.AddChecker(health.NewDetectorChecker(detect.NewDetector(nil)))
			if a.store != nil {
				pm.AddChecker(health.NewStoreChecker(a.store))
			}

			srv := server.NewServer(server.Deps{
				Probes:   pm,
				Pipeline: p,
				Gatherer: a.registry,
				Metrics:  a.metrics,
				Logger:   a.logger,
			}, server.Config{
				Address:         sc.ListenAddress(),
				ShutdownTimeout: sc.ShutdownTimeout,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				IdleTimeout:     sc.IdleTimeout,
			})

			fmt.Fprintf(cmd.OutOrStdout(), "ordinex %s listening on http://%s (Ctrl+C to stop)\n", version.Version, sc.ListenAddress())

			return serveUntilDone(cmd.Context(), srv, sc.ShutdownTimeout, a)
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "address to bind to (default from server.address)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from server.port)")

	return cmd
}

// serveUntilDone runs srv until it fails or ctx is cancelled, then shuts
// it down gracefully
func serveUntilDone(ctx context.Context, srv *server.Server, timeout time.Duration, a *app) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("shutting down", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		a.logger.Info("server stopped")
		return nil
	}
}
