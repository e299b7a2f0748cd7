package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(Config{Threshold: 3, ResetTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		if b.State() != Closed {
			t.Fatalf("state after %d failures = %v, want closed", i, b.State())
		}
		b.Failure()
	}

	if b.State() != Open {
		t.Errorf("state = %v, want open", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Errorf("Allow = %v, want ErrOpen", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(Config{Threshold: 3, ResetTimeout: time.Hour})

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()

	if b.State() != Closed {
		t.Errorf("state = %v, want closed (success resets the count)", b.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(Config{Threshold: 1, ResetTimeout: time.Millisecond, HalfOpenSuccesses: 2})

	b.Failure()
	if b.State() != Open {
		t.Fatalf("state = %v, want open", b.State())
	}

	time.Sleep(5 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow after reset timeout: %v", err)
	}
	if b.State() != HalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}

	b.Success()
	if b.State() != HalfOpen {
		t.Fatalf("one success should not close the breaker yet")
	}
	b.Success()
	if b.State() != Closed {
		t.Errorf("state = %v, want closed after enough probe successes", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(Config{Threshold: 1, ResetTimeout: time.Millisecond, HalfOpenSuccesses: 2})

	b.Failure()
	time.Sleep(5 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	b.Failure()
	if b.State() != Open {
		t.Errorf("state = %v, want open after half-open failure", b.State())
	}
}

func TestBreakerExecute(t *testing.T) {
	b := NewBreaker(Config{Threshold: 1, ResetTimeout: time.Hour})

	failing := errors.New("boom")
	if err := b.Execute(func() error { return failing }); !errors.Is(err, failing) {
		t.Fatalf("Execute = %v, want wrapped fn error", err)
	}

	calls := 0
	err := b.Execute(func() error { calls++; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Execute = %v, want ErrOpen", err)
	}
	if calls != 0 {
		t.Error("fn must not run while the breaker is open")
	}
}

func TestStateString(t *testing.T) {
	if Closed.String() != "closed" || Open.String() != "open" || HalfOpen.String() != "half-open" {
		t.Error("State.String mismatch")
	}
}
