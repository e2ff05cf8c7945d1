package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(3), func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fastRetry(3), func() error {
		calls++
		return errBoom
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("error = %v, want wrapped errBoom", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "op", fastRetry(5), func() error {
		calls++
		cancel()
		return errBoom
	})
	if err == nil {
		t.Fatal("expected error from cancelled retry")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour})

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if b.CurrentState() != StateOpen {
		t.Fatalf("state = %v, want open", b.CurrentState())
	}

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Millisecond})

	if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatal(err)
	}
	if b.CurrentState() != StateOpen {
		t.Fatalf("state = %v, want open", b.CurrentState())
	}

	time.Sleep(5 * time.Millisecond)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.CurrentState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", b.CurrentState())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Millisecond})

	b.Execute(func() error { return errBoom })
	time.Sleep(5 * time.Millisecond)
	b.Execute(func() error { return errBoom })

	if b.CurrentState() != StateOpen {
		t.Errorf("state = %v, want open after failed probe", b.CurrentState())
	}
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{})
	for i := 0; i < 10; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	if b.CurrentState() != StateClosed {
		t.Errorf("state = %v, want closed", b.CurrentState())
	}
}
