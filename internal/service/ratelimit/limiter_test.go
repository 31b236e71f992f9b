package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAllowConsumesCapacity(t *testing.T) {
	l := New()
	if !l.Allow("fmp", 2, 0.001) || !l.Allow("fmp", 2, 0.001) {
		t.Fatalf("first two calls should pass")
	}
	if l.Allow("fmp", 2, 0.001) {
		t.Fatalf("third call should be limited")
	}
	if !l.Allow("gnews", 1, 0.001) {
		t.Fatalf("keys must be independent")
	}
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	l := New()
	ctx := context.Background()
	rate := PerInterval(20 * time.Millisecond)

	if err := l.Wait(ctx, "k", 1, rate); err != nil {
		t.Fatalf("wait: %v", err)
	}
	start := time.Now()
	if err := l.Wait(ctx, "k", 1, rate); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatalf("second wait returned too early: %v", time.Since(start))
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	_ = l.Allow("k", 1, 0.001)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.001); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
