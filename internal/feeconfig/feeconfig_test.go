package feeconfig

import (
	"math"
	"testing"
)

func TestFeeRateForFallsBackToVIP0(t *testing.T) {
	s := Default()
	got := s.FeeRateFor(42)
	want := s.VIPFees[0]
	if got != want {
		t.Fatalf("FeeRateFor(42)=%v, want VIP0 fallback %v", got, want)
	}
}

func TestFeeRateForVIP0Literal(t *testing.T) {
	s := Default()
	rate := s.FeeRateFor(0)
	if rate.MakerRate != 0.00002 {
		t.Fatalf("VIP0 maker rate=%v, want 0.00002", rate.MakerRate)
	}
	if rate.TakerRate != 0.00050 {
		t.Fatalf("VIP0 taker rate=%v, want 0.00050", rate.TakerRate)
	}
}

func TestVIPRatesStrictlyDecreasing(t *testing.T) {
	s := Default()
	for lvl := 1; lvl <= 9; lvl++ {
		prev := s.FeeRateFor(lvl - 1)
		cur := s.FeeRateFor(lvl)
		if cur.MakerRate >= prev.MakerRate {
			t.Fatalf("VIP%d maker rate %v not below VIP%d %v", lvl, cur.MakerRate, lvl-1, prev.MakerRate)
		}
		if cur.TakerRate >= prev.TakerRate {
			t.Fatalf("VIP%d taker rate %v not below VIP%d %v", lvl, cur.TakerRate, lvl-1, prev.TakerRate)
		}
	}
}

func TestTierForBoundaryInclusive(t *testing.T) {
	s := Default()
	tier := s.TierFor(50_000)
	if tier.NotionalUpper != 50_000 {
		t.Fatalf("notional exactly at upper bound resolved to tier upper=%v, want 50000", tier.NotionalUpper)
	}
	if tier.MaintenanceRate != 0.005 {
		t.Fatalf("tier maintenance rate=%v, want 0.005", tier.MaintenanceRate)
	}
}

func TestTierForAboveAllBoundsUsesLastTier(t *testing.T) {
	s := Default()
	tier := s.TierFor(1e12)
	if !math.IsInf(tier.NotionalUpper, 1) {
		t.Fatalf("notional above all bounds should resolve to +Inf tier, got %v", tier.NotionalUpper)
	}
	if tier.MaxLeverage != 8 {
		t.Fatalf("last tier max leverage=%v, want 8", tier.MaxLeverage)
	}
}

func TestScenarioLiteralMaintenanceRates(t *testing.T) {
	s := Default()
	want := []float64{0.005, 0.01, 0.015, 0.025, 0.05, 0.075}
	for i, tier := range s.MarginTiers {
		if tier.MaintenanceRate != want[i] {
			t.Fatalf("tier %d maintenance rate=%v, want %v", i, tier.MaintenanceRate, want[i])
		}
	}
}
