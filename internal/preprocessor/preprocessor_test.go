package preprocessor

import (
	"testing"
	"time"

	"perpsim/internal/channel"
	"perpsim/internal/market"
)

func TestForwardsSnapshotsInOrder(t *testing.T) {
	up := channel.NewUnbounded[market.Snapshot]()
	down := channel.NewUnbounded[market.Snapshot]()

	p := New(up, down)
	p.Start()
	defer p.Stop()

	up.Send(market.Snapshot{"BTCUSDT": {Price: 100}})
	up.Send(market.Snapshot{"BTCUSDT": {Price: 200}})

	first, ok := down.Receive(nil)
	if !ok || first["BTCUSDT"].Price != 100 {
		t.Fatalf("unexpected first snapshot: %+v ok=%v", first, ok)
	}
	second, ok := down.Receive(nil)
	if !ok || second["BTCUSDT"].Price != 200 {
		t.Fatalf("unexpected second snapshot: %+v ok=%v", second, ok)
	}
}

func TestFilterDropsSnapshots(t *testing.T) {
	up := channel.NewUnbounded[market.Snapshot]()
	down := channel.NewUnbounded[market.Snapshot]()

	p := New(up, down)
	p.Filter = func(s market.Snapshot) (market.Snapshot, bool) {
		tick, ok := s["BTCUSDT"]
		if !ok || tick.Price < 150 {
			return nil, false
		}
		return s, true
	}
	p.Start()
	defer p.Stop()

	up.Send(market.Snapshot{"BTCUSDT": {Price: 100}})
	up.Send(market.Snapshot{"BTCUSDT": {Price: 200}})

	got, ok := down.Receive(nil)
	if !ok || got["BTCUSDT"].Price != 200 {
		t.Fatalf("expected filtered snapshot with price 200, got %+v ok=%v", got, ok)
	}
}

func TestStopIsIdempotentAndClosesDownstream(t *testing.T) {
	up := channel.NewUnbounded[market.Snapshot]()
	down := channel.NewUnbounded[market.Snapshot]()

	p := New(up, down)
	p.Start()
	p.Stop()
	p.Stop() // must not panic or block

	if !down.IsClosed() {
		t.Fatalf("expected downstream channel closed after Stop")
	}
}

func TestDoubleStartIsNoOp(t *testing.T) {
	up := channel.NewUnbounded[market.Snapshot]()
	down := channel.NewUnbounded[market.Snapshot]()

	p := New(up, down)
	p.Start()
	p.Start() // should warn, not spawn a second goroutine
	defer p.Stop()

	up.Send(market.Snapshot{"BTCUSDT": {Price: 100}})

	select {
	case <-time.After(50 * time.Millisecond):
	}
	got, ok := down.TryReceive()
	if !ok || got["BTCUSDT"].Price != 100 {
		t.Fatalf("expected single forwarded snapshot, got %+v ok=%v", got, ok)
	}
	if _, ok := down.TryReceive(); ok {
		t.Fatalf("expected only one snapshot forwarded, found a duplicate")
	}
}
