// Package account implements the matching-and-margining engine: order
// submission, cancellation, symbol close, leverage adjustment, and the
// Step matching tick that advances balance, margin, and positions.
package account

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"perpsim/internal/feeconfig"
	"perpsim/internal/liqnotice"
	"perpsim/internal/money"
)

// Account holds one user's wallet, leverage settings, open orders, open
// positions, and the order-to-position association used by closers. All
// mutators and Step are meant to be serialized by the caller (see §5 of the
// design: this type is not internally safe for concurrent mutation from
// multiple goroutines beyond the coarse mutex it uses to protect its own
// fields during a single call).
type Account struct {
	mu sync.Mutex

	balance    money.D
	usedMargin money.D
	vipLevel   int
	hedgeMode  bool

	symbolLeverage map[string]float64

	nextOrderID    int64
	nextPositionID int64

	orders          []*Order
	positions       []*Position
	orderToPosition map[int64]int64

	schedule feeconfig.Schedule
	logger   *log.Logger
	notify   *liqnotice.Bus
}

// Option configures an Account at construction time.
type Option func(*Account)

// WithSchedule injects a fee/margin-tier schedule other than the default.
func WithSchedule(s feeconfig.Schedule) Option {
	return func(a *Account) { a.schedule = s }
}

// WithLogger injects a logger; nil restores log.Default().
func WithLogger(l *log.Logger) Option {
	return func(a *Account) {
		if l == nil {
			l = log.Default()
		}
		a.logger = l
	}
}

// WithNotifier subscribes the account's fill/liquidation events to bus.
func WithNotifier(bus *liqnotice.Bus) Option {
	return func(a *Account) { a.notify = bus }
}

// New constructs an Account starting in one-way mode with the given wallet
// balance and VIP level.
func New(initialBalance float64, vipLevel int, opts ...Option) *Account {
	a := &Account{
		balance:         money.FromFloat(initialBalance),
		usedMargin:      money.Zero(),
		vipLevel:        vipLevel,
		symbolLeverage:  make(map[string]float64),
		orderToPosition: make(map[int64]int64),
		schedule:        feeconfig.Default(),
		logger:          log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// --- Queries ---

// Balance returns the wallet balance.
func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return money.ToFloat(a.balance)
}

// TotalUnrealizedPnL sums unrealized PnL across all open positions.
func (a *Account) TotalUnrealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return money.ToFloat(a.totalUnrealizedPnLLocked())
}

func (a *Account) totalUnrealizedPnLLocked() money.D {
	total := money.Zero()
	for _, p := range a.positions {
		total = money.Add(total, p.UnrealizedPnL)
	}
	return total
}

// Equity returns balance plus total unrealized PnL.
func (a *Account) Equity() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return money.ToFloat(a.equityLocked())
}

func (a *Account) equityLocked() money.D {
	return money.Add(a.balance, a.totalUnrealizedPnLLocked())
}

// UsedMargin returns the sum of open positions' initial margins.
func (a *Account) UsedMargin() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return money.ToFloat(a.usedMargin)
}

// SymbolLeverage returns the configured leverage for symbol, defaulting to
// 1 when unset.
func (a *Account) SymbolLeverage(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.symbolLeverageLocked(symbol)
}

func (a *Account) symbolLeverageLocked(symbol string) float64 {
	if lev, ok := a.symbolLeverage[symbol]; ok {
		return lev
	}
	return 1
}

// IsHedgeMode reports whether the account is in hedge mode.
func (a *Account) IsHedgeMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hedgeMode
}

// OpenOrders returns a snapshot copy of the current open-orders list.
func (a *Account) OpenOrders() []Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Order, len(a.orders))
	for i, o := range a.orders {
		out[i] = *o
	}
	return out
}

// Positions returns a snapshot copy of the current open positions.
func (a *Account) Positions() []Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Position, len(a.positions))
	for i, p := range a.positions {
		out[i] = *p
	}
	return out
}

// --- Mutators ---

// SetPositionMode switches between one-way and hedge mode. It is refused
// (logged, no-op) if any position is currently open.
func (a *Account) SetPositionMode(hedge bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.positions) > 0 {
		a.logger.Printf("⚠️ position mode change refused: %d open position(s)", len(a.positions))
		return ErrPositionsOpen
	}
	a.hedgeMode = hedge
	return nil
}

// PlaceOrder submits a new order. Quantity must be strictly positive.
// price <= 0 selects a market order; price > 0 selects a limit order. No
// balance is deducted here; all margin debiting and fee charging happens
// during Step.
func (a *Account) PlaceOrder(symbol string, quantity, price float64, isLong, reduceOnly bool) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if quantity <= 0 {
		a.logger.Printf("❌ place_order rejected: non-positive quantity %v for %s", quantity, symbol)
		return 0, ErrInvalidQuantity
	}

	side := sideOf(isLong)
	id := a.nextOrderID + 1
	a.nextOrderID = id

	order := &Order{
		ID:         id,
		Symbol:     symbol,
		Quantity:   quantity,
		Price:      price,
		Side:       side,
		ReduceOnly: reduceOnly,
	}

	if !a.hedgeMode && !reduceOnly {
		if rewritten := a.rewriteOneWayLocked(order); rewritten {
			return id, nil
		}
	}

	a.orders = append(a.orders, order)
	return id, nil
}

// ClosePosition creates a closing order for every position matching symbol
// (both sides, in hedge mode).
func (a *Account) ClosePosition(symbol string, price float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked(symbol, nil, price)
}

// ClosePositionSide closes only the position matching (symbol, side) — the
// hedge-mode variant of ClosePosition.
func (a *Account) ClosePositionSide(symbol string, isLong bool, price float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	side := sideOf(isLong)
	return a.closeLocked(symbol, &side, price)
}

func (a *Account) closeLocked(symbol string, side *Side, price float64) error {
	matched := false
	for _, p := range a.positions {
		if p.Symbol != symbol {
			continue
		}
		if side != nil && p.Side != *side {
			continue
		}
		matched = true
		id := a.nextOrderID + 1
		a.nextOrderID = id
		closer := &Order{
			ID:               id,
			Symbol:           symbol,
			Quantity:         p.Quantity,
			Price:            price,
			Side:             opposite(p.Side),
			TargetPositionID: p.ID,
		}
		a.orders = append(a.orders, closer)
	}
	if !matched {
		a.logger.Printf("❌ close_position: %s", ErrUnknownSymbol)
		return ErrUnknownSymbol
	}
	return nil
}

// CancelOrderByID removes the open order with the given id, if any. It is
// idempotent on state: a second call on the same id mutates nothing, but it
// again returns ErrUnknownOrder since the id is no longer open.
func (a *Account) CancelOrderByID(id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, o := range a.orders {
		if o.ID == id {
			a.orders = append(a.orders[:i], a.orders[i+1:]...)
			return nil
		}
	}
	a.logger.Printf("❌ cancel_order_by_id rejected: %s", ErrUnknownOrder)
	return ErrUnknownOrder
}

func opposite(s Side) Side {
	if s == Long {
		return Short
	}
	return Long
}

// traceID returns a short correlation id for logging one Step call.
func traceID() string {
	return uuid.NewString()[:8]
}
