// Package preprocessor drains an upstream market-tick channel and forwards
// each tick downstream, giving callers a single goroutine lifecycle to
// start and stop rather than a raw channel to manage directly.
package preprocessor

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"perpsim/internal/channel"
	"perpsim/internal/market"
)

// Preprocessor forwards market.Snapshot values from an upstream channel to
// a downstream one, applying Filter (if set) to each value in between.
type Preprocessor struct {
	upstream   *channel.Channel[market.Snapshot]
	downstream *channel.Channel[market.Snapshot]
	logger     *log.Logger
	id         string

	// Filter, if non-nil, transforms or drops (returns ok=false) a
	// snapshot before it is forwarded downstream.
	Filter func(market.Snapshot) (market.Snapshot, bool)

	started atomic.Bool
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// New builds a Preprocessor reading from upstream and writing to downstream.
// Each instance is tagged with a short UUID for log correlation across
// concurrent Start/Stop cycles.
func New(upstream, downstream *channel.Channel[market.Snapshot]) *Preprocessor {
	return &Preprocessor{
		upstream:   upstream,
		downstream: downstream,
		logger:     log.Default(),
		id:         uuid.NewString()[:8],
	}
}

// WithLogger overrides the default logger.
func (p *Preprocessor) WithLogger(l *log.Logger) *Preprocessor {
	if l != nil {
		p.logger = l
	}
	return p
}

// Start launches the forwarding goroutine. Calling Start twice is a no-op;
// the second call logs a warning and returns immediately.
func (p *Preprocessor) Start() {
	if !p.started.CompareAndSwap(false, true) {
		p.logger.Printf("⚠️ preprocessor[%s] already started, ignoring duplicate Start", p.id)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			snapshot, ok := p.upstream.Receive(nil)
			if !ok {
				p.logger.Printf("✅ preprocessor[%s] upstream closed, stopping", p.id)
				return
			}

			out := snapshot
			if p.Filter != nil {
				var keep bool
				out, keep = p.Filter(snapshot)
				if !keep {
					continue
				}
			}

			if !p.downstream.Send(out) {
				p.logger.Printf("⚠️ preprocessor[%s] downstream closed, dropping snapshot", p.id)
				return
			}
		}
	}()
}

// Stop closes the downstream channel and blocks until the forwarding
// goroutine has exited. Stop is idempotent.
func (p *Preprocessor) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.upstream.Close()
	p.wg.Wait()
	p.downstream.Close()
}
