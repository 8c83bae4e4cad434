package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker(1, time.Second, 1)

	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after half-open failure, got %s", state)
	}
}

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	var flight SingleFlight
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0

	go func() {
		_, _, _ = flight.Do("key", func() (any, error) {
			calls++
			close(started)
			<-release
			return "first", nil
		})
	}()

	<-started
	done := make(chan any)
	go func() {
		val, _, shared := flight.Do("key", func() (any, error) {
			calls++
			return "second", nil
		})
		if !shared {
			t.Error("expected second caller to share the first result")
		}
		done <- val
	}()

	close(release)
	if val := <-done; val != "first" {
		t.Fatalf("expected shared value %q, got %v", "first", val)
	}
	if calls != 1 {
		t.Fatalf("expected a single execution, got %d", calls)
	}
}
