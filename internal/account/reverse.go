package account

// rewriteOneWayLocked implements §4.5: in one-way mode, an incoming order
// opposing an existing position in the same symbol is rewritten into one
// or two engine-generated orders rather than appended as a plain opener.
// It reports whether it consumed order (true) meaning the caller should
// not also append order to the open-orders list; order's ID has already
// been assigned by the caller.
func (a *Account) rewriteOneWayLocked(order *Order) bool {
	var existing *Position
	for _, p := range a.positions {
		if p.Symbol == order.Symbol && p.Side != order.Side {
			existing = p
			break
		}
	}
	if existing == nil {
		return false
	}

	p := existing.Quantity
	q := order.Quantity

	closer := &Order{
		ID:               order.ID,
		Symbol:           order.Symbol,
		Price:            order.Price,
		Side:             opposite(existing.Side),
		TargetPositionID: existing.ID,
	}

	switch {
	case q < p:
		closer.Quantity = q
		a.orders = append(a.orders, closer)

	case q == p:
		closer.Quantity = p
		a.orders = append(a.orders, closer)

	default: // q > p
		closer.Quantity = p
		a.orders = append(a.orders, closer)

		opener := &Order{
			ID:       a.nextOrderID + 1,
			Symbol:   order.Symbol,
			Quantity: q - p,
			Price:    order.Price,
			Side:     order.Side,
		}
		a.nextOrderID = opener.ID
		a.orders = append(a.orders, opener)
	}

	return true
}
