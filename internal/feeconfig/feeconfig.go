// Package feeconfig holds the static VIP fee schedule and margin-tier table
// consumed by the account engine. Tables are plain values, injected through
// the account constructor rather than referenced as package globals, so
// tests can supply alternates.
package feeconfig

import "math"

// FeeRate is one VIP level's maker/taker rate pair.
type FeeRate struct {
	MakerRate float64
	TakerRate float64
}

// MarginTier is one bracket of the margin table. NotionalUpper is the
// inclusive upper bound of notional this tier applies to; the last tier in
// a table must use +Inf.
type MarginTier struct {
	NotionalUpper       float64
	InitialMarginRate   float64
	MaintenanceRate     float64
	MaxLeverage         float64
}

// Schedule bundles a VIP fee table and a margin-tier table into the
// configuration an Account is constructed with.
type Schedule struct {
	VIPFees     map[int]FeeRate
	MarginTiers []MarginTier
}

// DefaultVIPFees is the shipped VIP fee schedule. VIP0's maker/taker rates
// are calibrated against the account engine's literal worked scenarios (see
// DESIGN.md for the numeric resolution against the narrative default).
func DefaultVIPFees() map[int]FeeRate {
	return map[int]FeeRate{
		0: {MakerRate: 0.00002, TakerRate: 0.00050},
		1: {MakerRate: 0.000018, TakerRate: 0.00045},
		2: {MakerRate: 0.000016, TakerRate: 0.00040},
		3: {MakerRate: 0.000014, TakerRate: 0.00035},
		4: {MakerRate: 0.000012, TakerRate: 0.00030},
		5: {MakerRate: 0.000010, TakerRate: 0.00025},
		6: {MakerRate: 0.000008, TakerRate: 0.00020},
		7: {MakerRate: 0.000006, TakerRate: 0.00015},
		8: {MakerRate: 0.000004, TakerRate: 0.00010},
		9: {MakerRate: 0.000002, TakerRate: 0.00005},
	}
}

// DefaultMarginTiers is the shipped coarse 6-tier margin table.
func DefaultMarginTiers() []MarginTier {
	return []MarginTier{
		{NotionalUpper: 50_000, InitialMarginRate: 0.01, MaintenanceRate: 0.005, MaxLeverage: 100},
		{NotionalUpper: 250_000, InitialMarginRate: 0.02, MaintenanceRate: 0.01, MaxLeverage: 50},
		{NotionalUpper: 1_000_000, InitialMarginRate: 0.03, MaintenanceRate: 0.015, MaxLeverage: 33},
		{NotionalUpper: 5_000_000, InitialMarginRate: 0.05, MaintenanceRate: 0.025, MaxLeverage: 20},
		{NotionalUpper: 10_000_000, InitialMarginRate: 0.10, MaintenanceRate: 0.05, MaxLeverage: 10},
		{NotionalUpper: math.Inf(1), InitialMarginRate: 0.125, MaintenanceRate: 0.075, MaxLeverage: 8},
	}
}

// Default returns the shipped default schedule.
func Default() Schedule {
	return Schedule{VIPFees: DefaultVIPFees(), MarginTiers: DefaultMarginTiers()}
}

// FeeRateFor looks up a VIP level, falling back to VIP 0's rate when the
// level has no table entry.
func (s Schedule) FeeRateFor(vipLevel int) FeeRate {
	if rate, ok := s.VIPFees[vipLevel]; ok {
		return rate
	}
	return s.VIPFees[0]
}

// TierFor returns the first tier whose NotionalUpper is greater than or
// equal to notional (boundary-inclusive: a notional exactly equal to a
// tier's upper bound resolves to that tier, not the next one).
func (s Schedule) TierFor(notional float64) MarginTier {
	for _, tier := range s.MarginTiers {
		if notional <= tier.NotionalUpper {
			return tier
		}
	}
	return s.MarginTiers[len(s.MarginTiers)-1]
}
