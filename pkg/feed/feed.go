// Package feed exposes the narrow surface a strategy needs against a
// simulated venue: subscribe to market data, subscribe to position
// updates, submit orders. SimFeed is the only implementation, wired
// directly to an in-process account engine and candle stream rather than
// a real exchange connection.
package feed

import (
	"errors"
	"log"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"perpsim/internal/account"
	"perpsim/internal/candle"
	"perpsim/internal/channel"
	"perpsim/internal/market"
)

// ErrUnknownSymbol is returned by SubmitOrder for a symbol with no
// registered candle series.
var ErrUnknownSymbol = errors.New("feed: unknown symbol")

// MarketDataCallback receives each tick's snapshot as it is replayed.
type MarketDataCallback func(market.Snapshot)

// PositionUpdateCallback receives the account's full position list after
// every Step.
type PositionUpdateCallback func([]account.Position)

// Feed is the capability surface a strategy drives a simulated venue
// through.
type Feed interface {
	OnMarketData(cb MarketDataCallback)
	OnPositionUpdate(cb PositionUpdateCallback)
	SubmitOrder(symbol string, quantity, price float64, isLong, reduceOnly bool) (int64, error)
}

// recentCacheSize bounds how many recent candles are retained per symbol
// for quick lookback access; older candles remain in the full Series but
// fall out of the cache.
const recentCacheSize = 500

// SimFeed drives an Account from a set of per-symbol candle series,
// advancing the account one Step per replayed candle and fanning the
// resulting snapshot and position list out to registered callbacks.
type SimFeed struct {
	mu      sync.Mutex
	acct    *account.Account
	series  map[string]*candle.Series
	cursors map[string]int
	recent  map[string]*lru.Cache[int, candle.Candle]
	logger  *log.Logger

	marketCbs   []MarketDataCallback
	positionCbs []PositionUpdateCallback
}

// New builds a SimFeed over acct, with one candle series per symbol.
func New(acct *account.Account, series map[string]*candle.Series) *SimFeed {
	f := &SimFeed{
		acct:    acct,
		series:  series,
		cursors: make(map[string]int),
		recent:  make(map[string]*lru.Cache[int, candle.Candle]),
		logger:  log.Default(),
	}
	for symbol := range series {
		c, err := lru.New[int, candle.Candle](recentCacheSize)
		if err != nil {
			// Only returns an error for a non-positive size, which
			// recentCacheSize never is.
			panic(err)
		}
		f.recent[symbol] = c
	}
	return f
}

// OnMarketData registers cb to be invoked once per replayed tick.
func (f *SimFeed) OnMarketData(cb MarketDataCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marketCbs = append(f.marketCbs, cb)
}

// OnPositionUpdate registers cb to be invoked once per Step with the
// account's current position list.
func (f *SimFeed) OnPositionUpdate(cb PositionUpdateCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positionCbs = append(f.positionCbs, cb)
}

// SubmitOrder places an order against the wrapped Account.
func (f *SimFeed) SubmitOrder(symbol string, quantity, price float64, isLong, reduceOnly bool) (int64, error) {
	f.mu.Lock()
	_, known := f.series[symbol]
	f.mu.Unlock()
	if !known {
		return 0, ErrUnknownSymbol
	}
	return f.acct.PlaceOrder(symbol, quantity, price, isLong, reduceOnly)
}

// Advance replays exactly one candle per symbol (the one at each symbol's
// current cursor), builds the combined snapshot, steps the account, and
// notifies callbacks. It returns false once every series is exhausted.
//
// Advance is the direct, unbuffered path used by tests and by any caller
// driving the feed synchronously. Produce/Consume below build the same
// snapshot but route it through a channel.Channel and a
// preprocessor.Preprocessor, for callers that want the exchange-side
// backpressure those pieces provide.
func (f *SimFeed) Advance() bool {
	snapshot, ok := f.nextSnapshot()
	if !ok {
		return false
	}
	f.applySnapshot(snapshot)
	return true
}

// nextSnapshot advances every symbol's cursor by one candle and returns the
// combined tick snapshot. ok is false once every series is exhausted.
func (f *SimFeed) nextSnapshot() (snapshot market.Snapshot, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot = make(market.Snapshot, len(f.series))
	for symbol, s := range f.series {
		idx := f.cursors[symbol]
		if idx >= s.Len() {
			continue
		}
		c := s.At(idx)
		f.cursors[symbol] = idx + 1
		ok = true

		if cache, cached := f.recent[symbol]; cached {
			cache.Add(idx, c)
		}

		snapshot[symbol] = market.Tick{Price: c.Close, AvailableVolume: c.Volume}
	}
	return snapshot, ok
}

// applySnapshot steps the account with snapshot and fans it out to every
// registered callback.
func (f *SimFeed) applySnapshot(snapshot market.Snapshot) {
	f.mu.Lock()
	marketCbs := append([]MarketDataCallback(nil), f.marketCbs...)
	positionCbs := append([]PositionUpdateCallback(nil), f.positionCbs...)
	f.mu.Unlock()

	f.acct.Step(snapshot)

	for _, cb := range marketCbs {
		cb(snapshot)
	}
	if len(positionCbs) > 0 {
		positions := f.acct.Positions()
		for _, cb := range positionCbs {
			cb(positions)
		}
	}
}

// Produce reads candles in lockstep across every symbol, exactly as Advance
// does, and sends each combined snapshot onto upstream instead of stepping
// the account directly. It is meant to run in its own goroutine, with
// upstream feeding a preprocessor.Preprocessor — this is the exchange side
// of the channel → preprocessor → channel → feed data flow. Produce closes
// upstream once every series is exhausted, or returns early if upstream
// rejects a send (Reject policy on a full channel, or upstream closed
// from outside).
func (f *SimFeed) Produce(upstream *channel.Channel[market.Snapshot]) {
	for {
		snapshot, ok := f.nextSnapshot()
		if !ok {
			upstream.Close()
			return
		}
		if !upstream.Send(snapshot) {
			return
		}
	}
}

// Consume steps the account with a snapshot pulled from a preprocessor's
// downstream channel and fans it out to registered callbacks — the feed
// side of the channel-driven data flow, called once per value received
// off that channel.
func (f *SimFeed) Consume(snapshot market.Snapshot) {
	f.applySnapshot(snapshot)
}

// RecentCandle returns the cached candle for symbol at the given series
// index, if it is still within the recent-cache window.
func (f *SimFeed) RecentCandle(symbol string, index int) (candle.Candle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cache, ok := f.recent[symbol]
	if !ok {
		return candle.Candle{}, false
	}
	return cache.Get(index)
}
