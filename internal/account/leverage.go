package account

import "perpsim/internal/money"

// SetSymbolLeverage sets symbol's leverage. If no prior leverage was set,
// it is simply recorded. Otherwise the leverage-adjustment protocol runs
// against every open position in that symbol; on failure the stored
// leverage is left unchanged.
func (a *Account) SetSymbolLeverage(symbol string, newLev float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if newLev <= 0 {
		a.logger.Printf("❌ set_symbol_leverage rejected: non-positive leverage %v", newLev)
		return ErrInvalidLeverage
	}

	if _, ok := a.symbolLeverage[symbol]; !ok {
		a.symbolLeverage[symbol] = newLev
		return nil
	}

	if err := a.adjustLeverageLocked(symbol, newLev); err != nil {
		a.logger.Printf("⚠️ set_symbol_leverage refused for %s: %v", symbol, err)
		return err
	}
	a.symbolLeverage[symbol] = newLev
	return nil
}

type marginRecalc struct {
	position     *Position
	newInitial   money.D
	newMaint     money.D
}

// adjustLeverageLocked implements the four-step protocol from §4.4: compute
// new margins per position, abort on tier violation, abort on insufficient
// equity for a positive delta, else commit atomically.
func (a *Account) adjustLeverageLocked(symbol string, newLev float64) error {
	var recalcs []marginRecalc

	for _, p := range a.positions {
		if p.Symbol != symbol {
			continue
		}
		notional := money.ToFloat(p.Notional)
		tier := a.schedule.TierFor(notional)
		if newLev > tier.MaxLeverage {
			return ErrTierExceeded
		}
		newInitial := money.Div(money.FromFloat(notional), money.FromFloat(newLev))
		newMaint := money.Mul(money.FromFloat(notional), money.FromFloat(tier.MaintenanceRate))
		recalcs = append(recalcs, marginRecalc{position: p, newInitial: newInitial, newMaint: newMaint})
	}

	delta := money.Zero()
	for _, r := range recalcs {
		delta = money.Add(delta, money.Sub(r.newInitial, r.position.InitialMargin))
	}

	if money.GreaterThan(delta, money.Zero()) {
		equity := a.equityLocked()
		if money.LessThan(equity, delta) {
			return ErrInsufficientEquity
		}
	}

	a.balance = money.Sub(a.balance, delta)
	for _, r := range recalcs {
		a.usedMargin = money.Add(money.Sub(a.usedMargin, r.position.InitialMargin), r.newInitial)
		r.position.InitialMargin = r.newInitial
		r.position.MaintenanceMargin = r.newMaint
		r.position.Leverage = newLev
	}
	return nil
}
