package account

import "errors"

var (
	// ErrInvalidQuantity is returned when a mutator receives a non-positive quantity.
	ErrInvalidQuantity = errors.New("account: quantity must be positive")
	// ErrInvalidLeverage is returned when SetSymbolLeverage receives a non-positive leverage.
	ErrInvalidLeverage = errors.New("account: leverage must be positive")
	// ErrUnknownSymbol is returned when a close targets a symbol with no open position.
	ErrUnknownSymbol = errors.New("account: no open position for symbol")
	// ErrUnknownOrder is returned when a cancel targets an order id that does not exist.
	ErrUnknownOrder = errors.New("account: unknown order id")
	// ErrTierExceeded is returned when a leverage change would exceed the margin tier's cap.
	ErrTierExceeded = errors.New("account: leverage exceeds tier cap")
	// ErrInsufficientEquity is returned when a leverage change needs more margin than equity covers.
	ErrInsufficientEquity = errors.New("account: insufficient equity for margin change")
	// ErrPositionsOpen is returned when SetPositionMode is called while positions exist.
	ErrPositionsOpen = errors.New("account: cannot change position mode with open positions")
)
