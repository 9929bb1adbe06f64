// Command simulate replays a set of historical candle CSV files through
// the account engine. Fills, open positions, and step latency are exported
// as Prometheus metrics; liquidations are logged as they happen, and the
// final balance and equity are logged at the end.
//
// Usage:
//
//	go run ./cmd/simulate -config ./config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"perpsim/internal/account"
	"perpsim/internal/candle"
	"perpsim/internal/channel"
	"perpsim/internal/config"
	"perpsim/internal/liqnotice"
	"perpsim/internal/market"
	"perpsim/internal/metrics"
	"perpsim/internal/preprocessor"
	"perpsim/internal/ratelimit"
	"perpsim/pkg/feed"
)

func main() {
	yamlPath := flag.String("config", "", "optional YAML config override path")
	flag.Parse()

	log.Println("=== simulate starting ===")

	cfg, err := config.Load(*yamlPath)
	if err != nil {
		log.Fatalf("load config error: %v", err)
	}

	reg := metrics.New()
	go serveMetrics(cfg.MetricsAddr, reg)

	series := make(map[string]*candle.Series)
	for _, symbol := range cfg.Symbols {
		path := candleCSVPathFor(cfg.CandleCSVPath, symbol)
		s, err := candle.LoadFile(path)
		if err != nil {
			log.Fatalf("❌ load candles for %s from %s: %v", symbol, path, err)
		}
		series[symbol] = s
		log.Printf("loaded %d candles for %s", s.Len(), symbol)
	}

	notices := liqnotice.NewBus()
	acct := account.New(cfg.InitialBalance, cfg.VIPLevel, account.WithNotifier(notices))
	if cfg.HedgeMode {
		if err := acct.SetPositionMode(true); err != nil {
			log.Fatalf("❌ set hedge mode: %v", err)
		}
	}

	events, unsubscribe := notices.Subscribe(64)
	defer unsubscribe()
	go func() {
		for e := range events {
			switch e.Kind {
			case liqnotice.Fill:
				reg.RecordFill(e.Symbol)
			case liqnotice.Liquidation:
				reg.RecordLiquidation()
				log.Printf("💥 liquidation notice: %s", e.Detail)
			}
		}
	}()

	f := feed.New(acct, series)
	f.OnPositionUpdate(func(positions []account.Position) {
		reg.SetOpenPositions(len(positions))
	})

	// Wire the exchange-side channel → preprocessor → market-side channel
	// data flow: f.Produce feeds upstream in its own goroutine, the
	// preprocessor forwards to downstream, and the loop below drains
	// downstream instead of pulling candles directly off f.
	policy := overflowPolicyFor(cfg.OverflowPolicy)
	upstream := channel.New[market.Snapshot](cfg.ChannelCapacity, policy)
	downstream := channel.New[market.Snapshot](cfg.ChannelCapacity, policy)

	pp := preprocessor.New(upstream, downstream)
	pp.Start()
	go func() {
		f.Produce(upstream)
		// Closing upstream only stops the forwarding goroutine once it next
		// tries to receive; Stop waits for that and then closes downstream,
		// which is what unblocks the consume loop below.
		pp.Stop()
	}()

	pacer := ratelimit.New(float64(ticksPerSecond(cfg.TickIntervalMs)), 1)
	ctx := context.Background()

	ticks := 0
	for {
		if err := pacer.Wait(ctx); err != nil {
			log.Printf("⚠️ replay cancelled: %v", err)
			break
		}
		start := time.Now()
		snapshot, ok := downstream.Receive(ctx)
		if !ok {
			break
		}
		f.Consume(snapshot)
		reg.ObserveStep(time.Since(start))
		ticks++
	}
	pp.Stop()

	log.Printf("✅ replay finished after %d ticks, final balance=%v equity=%v",
		ticks, acct.Balance(), acct.Equity())
}

// candleCSVPathFor substitutes a %s placeholder for symbol, if present,
// so one config can point at a per-symbol set of candle files.
func candleCSVPathFor(pathTemplate, symbol string) string {
	if strings.Contains(pathTemplate, "%s") {
		return fmt.Sprintf(pathTemplate, symbol)
	}
	return pathTemplate
}

// overflowPolicyFor maps config's string overflow policy to its
// channel.OverflowPolicy equivalent, defaulting to Block for anything
// unrecognized rather than failing startup over a typo.
func overflowPolicyFor(policy string) channel.OverflowPolicy {
	switch policy {
	case "drop_oldest":
		return channel.DropOldest
	case "reject":
		return channel.Reject
	default:
		return channel.Block
	}
}

func ticksPerSecond(intervalMs int) float64 {
	if intervalMs <= 0 {
		return 0
	}
	return 1000.0 / float64(intervalMs)
}

func serveMetrics(addr string, reg *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttpHandlerFor(reg))
	log.Printf("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("⚠️ metrics server stopped: %v", err)
	}
}

func promhttpHandlerFor(reg *metrics.Registry) http.Handler {
	return promhttp.HandlerFor(reg.Registerer(), promhttp.HandlerOpts{})
}
