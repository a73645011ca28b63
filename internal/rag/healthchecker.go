package rag

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nooklet/nooklet/internal/health"
)

// IndexHealthChecker monitors the vector index using the HealthPinger
// implemented by the concrete index.
type IndexHealthChecker struct {
	index        Index
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewIndexHealthChecker(index Index, log zerolog.Logger, probeTimeout time.Duration) *IndexHealthChecker {
	hc := &IndexHealthChecker{index: index, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (hc *IndexHealthChecker) Name() string    { return "vectorindex" }
func (hc *IndexHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

func (hc *IndexHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if p, ok := hc.index.(health.HealthPinger); ok {
			if err := p.HealthPing(checkCtx); err != nil {
				hc.healthy.Store(0)
				hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("vector index health check failed")
				return
			}
		}
		hc.healthy.Store(1)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
