package account

import "perpsim/internal/money"

// Side is a position or order direction.
type Side int

const (
	Long Side = iota
	Short
)

func sideOf(isLong bool) Side {
	if isLong {
		return Long
	}
	return Short
}

func (s Side) sign() float64 {
	if s == Long {
		return 1
	}
	return -1
}

// Order is a live intent to trade one symbol. Price <= 0 means market;
// Price > 0 means limit. TargetPositionID is set only for engine-generated
// closers (see the one-way reverse-order rewrite and ClosePosition).
type Order struct {
	ID               int64
	Symbol           string
	Quantity         float64
	Price            float64
	Side             Side
	ReduceOnly       bool
	TargetPositionID int64 // 0 means "no target" (openers)
}

func (o *Order) isMarket() bool { return o.Price <= 0 }
func (o *Order) hasTarget() bool { return o.TargetPositionID != 0 }

// Position is an open exposure in one symbol and side.
type Position struct {
	ID                int64
	OrderID           int64
	Symbol            string
	Quantity          float64
	EntryPrice        float64
	Side              Side
	UnrealizedPnL     money.D
	Notional          money.D
	InitialMargin     money.D
	MaintenanceMargin money.D
	AccumulatedFee    money.D
	Leverage          float64
	FeeRate           float64
}

func (p *Position) recomputeNotional() {
	p.Notional = money.FromFloat(p.EntryPrice * p.Quantity)
}
