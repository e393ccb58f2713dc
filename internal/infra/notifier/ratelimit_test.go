package notifier

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_AllowsBurst(t *testing.T) {
	limiter := NewRateLimiter(1.0, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx); err != nil {
			t.Fatalf("Allow() #%d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst of 3 took %v, expected near-immediate", elapsed)
	}
}

func TestRateLimiter_BlocksWhenExhausted(t *testing.T) {
	limiter := NewRateLimiter(10.0, 1)
	ctx := context.Background()

	if err := limiter.Allow(ctx); err != nil {
		t.Fatalf("first Allow(): %v", err)
	}

	start := time.Now()
	if err := limiter.Allow(ctx); err != nil {
		t.Fatalf("second Allow(): %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second Allow() returned after %v, expected to wait for refill", elapsed)
	}
}

func TestRateLimiter_RespectsCancellation(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)

	if err := limiter.Allow(context.Background()); err != nil {
		t.Fatalf("first Allow(): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Allow(ctx); err == nil {
		t.Fatal("expected context error while waiting for refill, got nil")
	}
}
