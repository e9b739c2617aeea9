package worker

// drain.go
// Background goroutine that replays the offline write queue. It drains once
// at startup (recovering anything left from a previous run) and then ticks,
// probing connectivity before each attempt so a downed store is not hammered
// with doomed replays.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/infra"
)

// DrainConfig holds the drain goroutine's dependencies.
type DrainConfig struct {
	Gateway  *gateway.Gateway
	Probe    *infra.Probe
	Interval time.Duration
}

// StartDrainLoop launches the background drainer. It respects the context
// for graceful shutdown.
func StartDrainLoop(ctx context.Context, cfg DrainConfig) {
	go func() {
		log.Info().Dur("interval", cfg.Interval).Msg("drain: started")

		// Startup drain: the queue may hold writes from before the last
		// shutdown.
		drainTick(ctx, cfg)

		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("drain: shutting down")
				return
			case <-ticker.C:
				drainTick(ctx, cfg)
			}
		}
	}()
}

func drainTick(ctx context.Context, cfg DrainConfig) {
	pending, err := cfg.Gateway.PendingCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("drain: cannot read queue depth")
		return
	}
	if pending == 0 {
		return
	}
	if !cfg.Probe.Online(ctx) {
		log.Debug().Int("pending", pending).Msg("drain: store unreachable, skipping tick")
		return
	}
	cfg.Gateway.Drain(ctx)
}
