package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDisabledLimiterNeverBlocks(t *testing.T) {
	limiter := New(0)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("disabled limiter blocked for %v", elapsed)
	}
}

func TestLimiterPacesCalls(t *testing.T) {
	limiter := New(50)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	// Burst of 1 means four waits of ~20ms each.
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Fatalf("limiter did not pace calls, elapsed %v", elapsed)
	}
}

func TestLimiterHonorsCancellation(t *testing.T) {
	limiter := New(0.001)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected cancellation error from saturated limiter")
	}
}
