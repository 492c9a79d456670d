package circuitbreaker

import (
	"testing"
	"time"
)

func TestTripsOpenAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 1, time.Minute)
	for i := 0; i < 3; i++ {
		if !cb.AllowRequest() {
			t.Fatalf("closed circuit must allow requests")
		}
		cb.RecordFailure()
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %v", cb.GetState())
	}
	if cb.AllowRequest() {
		t.Fatalf("open circuit must reject requests")
	}
}

func TestHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, 10*time.Millisecond)
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.AllowRequest() {
		t.Fatalf("expired open circuit must allow a probe")
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("expected half-open state, got %v", cb.GetState())
	}

	cb.RecordSuccess()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	cb.AllowRequest()
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected half-open failure to reopen, got %v", cb.GetState())
	}
}

func TestStateChangeCallback(t *testing.T) {
	cb := NewCircuitBreaker(1, 1, time.Minute)
	var transitions []State
	cb.SetStateChangeCallback(func(_, to State) {
		transitions = append(transitions, to)
	})
	cb.RecordFailure()
	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Fatalf("expected a single transition to open, got %v", transitions)
	}
}
