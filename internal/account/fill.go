package account

import (
	"math"

	"perpsim/internal/liqnotice"
	"perpsim/internal/money"
)

// fillCloser implements §4.7. It returns the residual order to carry over,
// or nil if the order is fully consumed.
func (a *Account) fillCloser(o *Order, fillQty, fillPrice float64, fee money.D, trace string) *Order {
	pos := a.findPositionByID(o.TargetPositionID)
	if pos == nil {
		return o // referenced position not found: carry over unchanged
	}

	closeQty := math.Min(fillQty, pos.Quantity)
	realizedPnL := money.FromFloat((fillPrice - pos.EntryPrice) * closeQty * pos.Side.sign())
	ratio := closeQty / pos.Quantity

	releasedInitial := money.FromFloat(money.ToFloat(pos.InitialMargin) * ratio)
	releasedMaint := money.FromFloat(money.ToFloat(pos.MaintenanceMargin) * ratio)
	releasedFee := money.FromFloat(money.ToFloat(pos.AccumulatedFee) * ratio)

	a.balance = money.Add(a.balance, money.Sub(money.Add(releasedInitial, realizedPnL), fee))
	a.usedMargin = money.Sub(a.usedMargin, releasedInitial)

	pos.Quantity -= closeQty
	pos.recomputeNotional()
	pos.InitialMargin = money.Sub(pos.InitialMargin, releasedInitial)
	pos.MaintenanceMargin = money.Sub(pos.MaintenanceMargin, releasedMaint)
	pos.AccumulatedFee = money.Sub(pos.AccumulatedFee, releasedFee)

	o.Quantity -= closeQty

	if money.IsDust(money.FromFloat(pos.Quantity)) {
		for orderID, posID := range a.orderToPosition {
			if posID == pos.ID {
				delete(a.orderToPosition, orderID)
			}
		}
	}

	a.publishFill(o, closeQty, fillPrice, trace)

	if !money.IsDust(money.FromFloat(o.Quantity)) {
		return o
	}
	return nil
}

// fillReduceOnly implements §4.8: a reduce-only opener with no matching
// position is silently dropped; with one, the closer math of §4.7 applies.
func (a *Account) fillReduceOnly(o *Order, fillQty, fillPrice float64, fee money.D, trace string) *Order {
	pos := a.findPositionBySideSymbol(o.Symbol, o.Side)
	if pos == nil {
		return nil // dropped: never becomes a new position
	}

	synthetic := &Order{
		ID:               o.ID,
		Symbol:           o.Symbol,
		Quantity:         o.Quantity,
		Price:            o.Price,
		Side:             o.Side,
		ReduceOnly:       true,
		TargetPositionID: pos.ID,
	}
	residual := a.fillCloser(synthetic, fillQty, fillPrice, fee, trace)
	if residual == nil {
		return nil
	}
	o.Quantity = residual.Quantity
	return o
}

// fillOpener implements §4.9.
func (a *Account) fillOpener(o *Order, fillQty, fillPrice, notional float64, fee money.D, trace string) *Order {
	leverage := a.symbolLeverageLocked(o.Symbol)
	tier := a.schedule.TierFor(notional)
	if leverage > tier.MaxLeverage {
		return o // fill rejected this step, tier cap exceeded
	}

	initialMargin := money.Div(money.FromFloat(notional), money.FromFloat(leverage))
	maintMargin := money.Mul(money.FromFloat(notional), money.FromFloat(tier.MaintenanceRate))
	required := money.Add(initialMargin, fee)

	if money.LessThan(a.equityLocked(), required) {
		return o
	}

	a.balance = money.Sub(a.balance, required)
	a.usedMargin = money.Add(a.usedMargin, initialMargin)

	if posID, ok := a.orderToPosition[o.ID]; ok {
		pos := a.findPositionByID(posID)
		oldNotional := money.ToFloat(pos.Notional)
		newQty := pos.Quantity + fillQty
		pos.EntryPrice = (oldNotional + notional) / newQty
		pos.Quantity = newQty
		pos.recomputeNotional()
		pos.InitialMargin = money.Add(pos.InitialMargin, initialMargin)
		pos.MaintenanceMargin = money.Add(pos.MaintenanceMargin, maintMargin)
		pos.AccumulatedFee = money.Add(pos.AccumulatedFee, fee)
	} else {
		rate := a.schedule.FeeRateFor(a.vipLevel)
		feeRate := rate.MakerRate
		if o.isMarket() {
			feeRate = rate.TakerRate
		}
		a.nextPositionID++
		pos := &Position{
			ID:                a.nextPositionID,
			OrderID:           o.ID,
			Symbol:            o.Symbol,
			Quantity:          fillQty,
			EntryPrice:        fillPrice,
			Side:              o.Side,
			Notional:          money.FromFloat(notional),
			InitialMargin:     initialMargin,
			MaintenanceMargin: maintMargin,
			AccumulatedFee:    fee,
			Leverage:          leverage,
			FeeRate:           feeRate,
		}
		a.positions = append(a.positions, pos)
		a.orderToPosition[o.ID] = pos.ID
	}

	o.Quantity -= fillQty
	a.publishFill(o, fillQty, fillPrice, trace)

	if !money.IsDust(money.FromFloat(o.Quantity)) {
		return o
	}
	return nil
}

func (a *Account) findPositionByID(id int64) *Position {
	for _, p := range a.positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (a *Account) findPositionBySideSymbol(symbol string, side Side) *Position {
	for _, p := range a.positions {
		if p.Symbol == symbol && p.Side == side {
			return p
		}
	}
	return nil
}

func (a *Account) publishFill(o *Order, qty, price float64, trace string) {
	if a.notify == nil {
		return
	}
	a.notify.Publish(liqnotice.Event{
		Kind:     liqnotice.Fill,
		Symbol:   o.Symbol,
		OrderID:  o.ID,
		Quantity: qty,
		Price:    price,
		Detail:   trace,
	})
}
