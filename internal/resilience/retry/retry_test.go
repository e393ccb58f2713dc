package retry

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoff_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: http.StatusInternalServerError, Status: "500"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls=%d, want 3", calls)
	}
}

func TestWithBackoff_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad request")
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err=%v, want %v", err, sentinel)
	}
	if calls != 1 {
		t.Errorf("calls=%d, want 1", calls)
	}
}

func TestWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return syscall.ECONNREFUSED
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls=%d, want 3", calls)
	}
}

func TestWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithBackoff(ctx, fastConfig(), func() error {
		return syscall.ECONNRESET
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"http 500", &HTTPError{StatusCode: 500, Status: "500"}, true},
		{"http 429", &HTTPError{StatusCode: 429, Status: "429"}, true},
		{"http 404", &HTTPError{StatusCode: 404, Status: "404"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
