package account

import (
	"math"

	"perpsim/internal/liqnotice"
	"perpsim/internal/market"
	"perpsim/internal/money"
)

// Step advances the account by one matching tick. market maps symbol to
// its current (price, available_volume) for this tick. Phases run in the
// fixed order documented on the account engine: per-order matching, prune,
// hedge merge, mark-to-market, liquidation check.
func (a *Account) Step(snapshot market.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	trace := traceID()

	carry := make([]*Order, 0, len(a.orders))
	for _, o := range a.orders {
		tick, ok := snapshot[o.Symbol]
		if !ok || tick.AvailableVolume <= 0 {
			carry = append(carry, o)
			continue
		}
		if !a.eligible(o, tick.Price) {
			carry = append(carry, o)
			continue
		}

		// The tick's available_volume is matched against independently by
		// every order in this loop; it is not decremented across orders
		// within the step. This mirrors the source's behavior and is what
		// the engine's own worked scenarios assume — see DESIGN.md for the
		// discussion of the alternative (shared, decrementing budget).
		fillQty := math.Min(o.Quantity, tick.AvailableVolume)
		if money.IsDust(money.FromFloat(fillQty)) {
			carry = append(carry, o)
			continue
		}

		// A market order fills at the tick's current price; a limit order
		// fills at its own limit price, matching original_source's
		// convention (and what S3's literal merged-entry-price figure
		// requires) rather than the tick price it merely cleared against.
		fillPrice := tick.Price
		if !o.isMarket() {
			fillPrice = o.Price
		}
		notional := fillQty * fillPrice
		fee := money.Mul(money.FromFloat(notional), money.FromFloat(a.feeRateFor(o)))

		var residual *Order
		switch {
		case o.hasTarget():
			residual = a.fillCloser(o, fillQty, fillPrice, fee, trace)
		case o.ReduceOnly:
			residual = a.fillReduceOnly(o, fillQty, fillPrice, fee, trace)
		default:
			residual = a.fillOpener(o, fillQty, fillPrice, notional, fee, trace)
		}
		if residual != nil {
			carry = append(carry, residual)
		}
	}
	a.orders = carry

	a.pruneDustPositionsLocked()
	// Merge runs every step regardless of mode: in one-way mode it is a
	// no-op in the common case (§4.5 already keeps at most one position
	// per symbol for opposite-side fills), but same-side openers placed
	// as separate orders still produce separate Position records on
	// their first fill, and this phase collapses those back together.
	a.mergeHedgePositionsLocked()
	a.markToMarketLocked(snapshot)
	a.checkLiquidationLocked(trace)
}

func (a *Account) eligible(o *Order, currentPrice float64) bool {
	if o.isMarket() {
		return true
	}
	if o.Side == Long {
		return currentPrice <= o.Price
	}
	return currentPrice >= o.Price
}

func (a *Account) feeRateFor(o *Order) float64 {
	rate := a.schedule.FeeRateFor(a.vipLevel)
	if o.isMarket() {
		return rate.TakerRate
	}
	return rate.MakerRate
}

// pruneDustPositionsLocked implements Phase B: positions whose quantity has
// fallen to dust are removed, along with any order→position map entries
// that referenced them.
func (a *Account) pruneDustPositionsLocked() {
	kept := a.positions[:0]
	removed := make(map[int64]bool)
	for _, p := range a.positions {
		if money.IsDust(money.FromFloat(p.Quantity)) {
			removed[p.ID] = true
			continue
		}
		kept = append(kept, p)
	}
	a.positions = kept
	if len(removed) == 0 {
		return
	}
	for orderID, posID := range a.orderToPosition {
		if removed[posID] {
			delete(a.orderToPosition, orderID)
		}
	}
}

func (a *Account) markToMarketLocked(snapshot market.Snapshot) {
	for _, p := range a.positions {
		tick, ok := snapshot[p.Symbol]
		if !ok {
			continue // stale PnL preserved for symbols absent from this tick
		}
		p.UnrealizedPnL = money.FromFloat((tick.Price - p.EntryPrice) * p.Quantity * p.Side.sign())
	}
}

// checkLiquidationLocked implements Phase E: if equity has fallen below
// aggregate maintenance margin, the account is wiped out entirely.
func (a *Account) checkLiquidationLocked(trace string) {
	maint := money.Zero()
	for _, p := range a.positions {
		maint = money.Add(maint, p.MaintenanceMargin)
	}
	equity := a.equityLocked()
	if !money.LessThan(equity, maint) {
		return
	}

	a.logger.Printf("💥 [%s] liquidation: equity=%v maintenance=%v", trace, money.ToFloat(equity), money.ToFloat(maint))
	a.balance = money.Zero()
	a.usedMargin = money.Zero()
	a.positions = nil
	a.orders = nil
	a.orderToPosition = make(map[int64]int64)

	if a.notify != nil {
		a.notify.Publish(liqnotice.Event{Kind: liqnotice.Liquidation, Detail: trace})
	}
}
