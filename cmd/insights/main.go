// Command insights joins daily activity totals with daily weather and writes
// an insight report plus the tables behind it.
//
// Usage:
//
//	insights run            # one batch: read, join, analyze, write
//	insights extract        # Apple Health export.xml -> events CSV
//	insights fetch-weather  # Open-Meteo archive -> weather CSV
//	insights serve          # rebuild every REFRESH_INTERVAL and serve /report
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
