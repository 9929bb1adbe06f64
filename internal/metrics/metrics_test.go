package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordFillIncrementsCounter(t *testing.T) {
	r := New()
	r.RecordFill("BTCUSDT")
	r.RecordFill("BTCUSDT")
	r.RecordFill("ETHUSDT")

	if got := testutil.ToFloat64(r.FillsTotal.WithLabelValues("BTCUSDT")); got != 2 {
		t.Fatalf("expected 2 BTCUSDT fills, got %v", got)
	}
	if got := testutil.ToFloat64(r.FillsTotal.WithLabelValues("ETHUSDT")); got != 1 {
		t.Fatalf("expected 1 ETHUSDT fill, got %v", got)
	}
}

func TestRecordLiquidationIncrementsCounter(t *testing.T) {
	r := New()
	r.RecordLiquidation()
	if got := testutil.ToFloat64(r.LiquidationsTotal); got != 1 {
		t.Fatalf("expected 1 liquidation, got %v", got)
	}
}

func TestObserveStepRecordsIntoHistogram(t *testing.T) {
	r := New()
	r.ObserveStep(5 * time.Millisecond)
	if got := testutil.CollectAndCount(r.StepLatency); got != 1 {
		t.Fatalf("expected 1 histogram collected, got %d", got)
	}
	var m dto.Metric
	if err := r.StepLatency.Write(&m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("expected 1 histogram sample, got %d", got)
	}
}

func TestSetOpenPositionsUpdatesGauge(t *testing.T) {
	r := New()
	r.SetOpenPositions(3)
	if got := testutil.ToFloat64(r.OpenPositions); got != 3 {
		t.Fatalf("expected gauge value 3, got %v", got)
	}
}
