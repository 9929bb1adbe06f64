package account

import "perpsim/internal/money"

type mergeKey struct {
	symbol string
	side   Side
}

// mergeHedgePositionsLocked implements Phase C: positions sharing
// (symbol, side) are merged into one using notional-weighted entry price
// and summed notional, initial margin, maintenance margin, and fee. It
// runs every step regardless of mode; in one-way mode it is a no-op in
// the common case since §4.5 already keeps at most one position per
// symbol, but it still collapses same-side openers filled as separate
// orders into one position.
func (a *Account) mergeHedgePositionsLocked() {
	groups := make(map[mergeKey][]*Position)
	for _, p := range a.positions {
		key := mergeKey{p.Symbol, p.Side}
		groups[key] = append(groups[key], p)
	}

	remap := make(map[int64]int64)
	var merged []*Position

	for _, group := range groups {
		if len(group) == 1 {
			merged = append(merged, group[0])
			continue
		}

		survivor := group[0]
		for _, p := range group[1:] {
			if p.ID < survivor.ID {
				survivor = p
			}
		}

		totalQty := 0.0
		totalNotional := money.Zero()
		totalInitial := money.Zero()
		totalMaint := money.Zero()
		totalFee := money.Zero()
		for _, p := range group {
			totalQty += p.Quantity
			totalNotional = money.Add(totalNotional, p.Notional)
			totalInitial = money.Add(totalInitial, p.InitialMargin)
			totalMaint = money.Add(totalMaint, p.MaintenanceMargin)
			totalFee = money.Add(totalFee, p.AccumulatedFee)
			if p.ID != survivor.ID {
				remap[p.ID] = survivor.ID
			}
		}

		survivor.Quantity = totalQty
		survivor.EntryPrice = money.ToFloat(totalNotional) / totalQty
		survivor.Notional = totalNotional
		survivor.InitialMargin = totalInitial
		survivor.MaintenanceMargin = totalMaint
		survivor.AccumulatedFee = totalFee

		merged = append(merged, survivor)
	}

	a.positions = merged
	if len(remap) == 0 {
		return
	}
	for orderID, posID := range a.orderToPosition {
		if newID, ok := remap[posID]; ok {
			a.orderToPosition[orderID] = newID
		}
	}
	for _, o := range a.orders {
		if newID, ok := remap[o.TargetPositionID]; ok {
			o.TargetPositionID = newID
		}
	}
}
