package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDisabledPacerNeverBlocks(t *testing.T) {
	p := New(0, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Allow() {
		t.Fatalf("expected disabled pacer to always allow")
	}
}

func TestPacerThrottlesBurst(t *testing.T) {
	p := New(1000, 1)
	if !p.Allow() {
		t.Fatalf("expected first tick allowed")
	}
	if p.Allow() {
		t.Fatalf("expected immediate second tick to be throttled with burst=1")
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	p := New(0.001, 1) // effectively never refills within the test window
	p.Allow()          // consume the single burst token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatalf("expected context deadline error")
	}
}
