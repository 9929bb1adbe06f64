package feed

import (
	"strings"
	"testing"

	"perpsim/internal/account"
	"perpsim/internal/candle"
	"perpsim/internal/channel"
	"perpsim/internal/market"
	"perpsim/internal/preprocessor"
)

const csvData = `open_time,open,high,low,close,volume,close_time,quote_volume,trade_count,taker_buy_base,taker_buy_quote
1700000000000,100,100,100,100,50,1700000059999,5000,1,25,2500
1700000060000,100,100,100,110,50,1700000119999,5500,1,25,2750
`

func newTestFeed(t *testing.T) *SimFeed {
	s, err := candle.Load(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	acct := account.New(10000, 0)
	return New(acct, map[string]*candle.Series{"BTCUSDT": s})
}

func TestSubmitOrderRejectsUnknownSymbol(t *testing.T) {
	f := newTestFeed(t)
	if _, err := f.SubmitOrder("ETHUSDT", 1, 0, true, false); err != ErrUnknownSymbol {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestAdvanceDrivesAccountAndCallbacks(t *testing.T) {
	f := newTestFeed(t)

	var marketCalls, positionCalls int
	f.OnMarketData(func(s market.Snapshot) {
		marketCalls++
	})

	var lastPositions int
	f.OnPositionUpdate(func(positions []account.Position) {
		positionCalls++
		lastPositions = len(positions)
	})

	if _, err := f.SubmitOrder("BTCUSDT", 1, 0, true, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.Advance() {
		t.Fatalf("expected first Advance to succeed")
	}
	if positionCalls != 1 {
		t.Fatalf("expected 1 position callback, got %d", positionCalls)
	}
	if lastPositions != 1 {
		t.Fatalf("expected 1 open position after fill, got %d", lastPositions)
	}

	if !f.Advance() {
		t.Fatalf("expected second Advance to succeed")
	}
	if f.Advance() {
		t.Fatalf("expected third Advance to report exhaustion")
	}
	if marketCalls != 2 {
		t.Fatalf("expected 2 market data callbacks, got %d", marketCalls)
	}
}

func TestProduceConsumeThroughPreprocessor(t *testing.T) {
	f := newTestFeed(t)

	var ticks int
	f.OnMarketData(func(s market.Snapshot) {
		ticks++
	})

	up := channel.NewUnbounded[market.Snapshot]()
	down := channel.NewUnbounded[market.Snapshot]()
	p := preprocessor.New(up, down)
	p.Start()

	go func() {
		f.Produce(up)
		p.Stop()
	}()

	for {
		snapshot, ok := down.Receive(nil)
		if !ok {
			break
		}
		f.Consume(snapshot)
	}

	if ticks != 2 {
		t.Fatalf("expected 2 ticks delivered through the preprocessor, got %d", ticks)
	}
	if got := f.acct.Balance(); got != 10000 {
		t.Fatalf("expected balance unchanged with no orders placed, got %v", got)
	}
}

func TestRecentCandleCache(t *testing.T) {
	f := newTestFeed(t)
	f.Advance()
	c, ok := f.RecentCandle("BTCUSDT", 0)
	if !ok || c.Close != 100 {
		t.Fatalf("expected cached candle with close=100, got %+v ok=%v", c, ok)
	}
	if _, ok := f.RecentCandle("ETHUSDT", 0); ok {
		t.Fatalf("expected no cache entry for unknown symbol")
	}
}
