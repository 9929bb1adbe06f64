// Package metrics exposes step-latency and event counters for a
// simulation run via a package-local Prometheus registry, rather than
// registering against prometheus.DefaultRegisterer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles the simulator's metrics with their own registry so a
// process can run more than one simulation without collector collisions.
type Registry struct {
	reg *prometheus.Registry

	StepLatency      prometheus.Histogram
	FillsTotal       *prometheus.CounterVec
	LiquidationsTotal prometheus.Counter
	OpenPositions    prometheus.Gauge
}

// New builds a Registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		StepLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "perpsim_step_latency_seconds",
			Help:    "Wall-clock time spent in one Account.Step call.",
			Buckets: prometheus.DefBuckets,
		}),
		FillsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perpsim_fills_total",
			Help: "Number of order fills, labeled by symbol.",
		}, []string{"symbol"}),
		LiquidationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perpsim_liquidations_total",
			Help: "Number of forced liquidations.",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "perpsim_open_positions",
			Help: "Current number of open positions across all symbols.",
		}),
	}

	reg.MustRegister(r.StepLatency, r.FillsTotal, r.LiquidationsTotal, r.OpenPositions)
	return r
}

// Registerer exposes the underlying registry for an HTTP handler to serve.
func (r *Registry) Registerer() *prometheus.Registry {
	return r.reg
}

// ObserveStep records the duration of one Step call.
func (r *Registry) ObserveStep(d time.Duration) {
	r.StepLatency.Observe(d.Seconds())
}

// RecordFill increments the fill counter for symbol.
func (r *Registry) RecordFill(symbol string) {
	r.FillsTotal.WithLabelValues(symbol).Inc()
}

// RecordLiquidation increments the liquidation counter.
func (r *Registry) RecordLiquidation() {
	r.LiquidationsTotal.Inc()
}

// SetOpenPositions updates the open-positions gauge.
func (r *Registry) SetOpenPositions(n int) {
	r.OpenPositions.Set(float64(n))
}
