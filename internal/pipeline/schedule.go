package pipeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// RunEvery runs the pipeline immediately and then once per interval until ctx
// is cancelled. A failed run is logged and the loop keeps going; runs never
// overlap.
func (p *Pipeline) RunEvery(ctx context.Context, interval time.Duration, clk clockwork.Clock) error {
	p.logger.Info("scheduled runs started", "interval", interval)

	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	for {
		// A tick and cancellation can be ready together.
		if err := ctx.Err(); err != nil {
			p.logger.Info("scheduled runs stopping", "reason", err)
			return nil
		}

		// Errors are already logged and counted by Run.
		_, _ = p.Run(ctx)

		select {
		case <-ctx.Done():
		case <-ticker.Chan():
		}
	}
}
