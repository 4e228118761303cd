package main

import (
	"context"
	"errors"
	"net/http"

	httpadapter "github.com/couchcryptid/activity-weather-insights/internal/adapter/http"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Rebuild the report every REFRESH_INTERVAL and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			p, closeSinks := a.newPipeline()
			defer closeSinks()

			srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, p, a.logger)

			// Start HTTP server.
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error("http server error", "error", err)
				}
			}()

			// Start scheduled runs.
			done := make(chan struct{})
			go func() {
				defer close(done)
				if err := p.RunEvery(ctx, a.cfg.RefreshInterval, clockwork.NewRealClock()); err != nil {
					a.logger.Error("scheduler error", "error", err)
				}
			}()

			<-ctx.Done()
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
			}
			select {
			case <-done:
			case <-shutdownCtx.Done():
				a.logger.Warn("in-flight run did not finish before shutdown timeout")
			}

			a.logger.Info("shutdown complete")
			return nil
		},
	}
}
