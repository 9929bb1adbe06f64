// Package ratelimit paces the CSV tick replay loop so a simulation run
// can be throttled to a wall-clock rate instead of burning through a
// candle file as fast as the CPU allows.
package ratelimit

import (
	"context"
	"log"

	"golang.org/x/time/rate"
)

// Pacer throttles calls to Wait to at most rate.Limit ticks per second,
// with a small burst allowance so short catch-up bursts aren't penalized.
type Pacer struct {
	limiter *rate.Limiter
	logger  *log.Logger
}

// New builds a Pacer allowing ticksPerSecond sustained throughput with the
// given burst. A non-positive ticksPerSecond disables throttling: Wait
// always returns immediately.
func New(ticksPerSecond float64, burst int) *Pacer {
	if ticksPerSecond <= 0 {
		return &Pacer{logger: log.Default()}
	}
	if burst <= 0 {
		burst = 1
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(ticksPerSecond), burst),
		logger:  log.Default(),
	}
}

// Wait blocks until the next tick is allowed to proceed, or ctx is
// cancelled first.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		p.logger.Printf("⚠️ ratelimit: wait cancelled: %v", err)
		return err
	}
	return nil
}

// Allow reports whether a tick may proceed right now, without blocking.
func (p *Pacer) Allow() bool {
	if p.limiter == nil {
		return true
	}
	return p.limiter.Allow()
}
