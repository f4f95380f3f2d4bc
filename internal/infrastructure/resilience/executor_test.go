package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastPolicy(breaker bool) Policy {
	return Policy{
		Attempts:       3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
		Breaker: BreakerPolicy{
			Enabled:          breaker,
			MinRequests:      2,
			FailureRatio:     0.5,
			OpenTimeout:      time.Minute,
			HalfOpenMaxCalls: 1,
		},
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(fastPolicy(false))
	errBusy := errors.New("broker busy")

	attempts := 0
	err := exec.Execute(context.Background(), "events.publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errBusy
		}
		return nil
	}, func(err error) Outcome {
		return Outcome{Retry: errors.Is(err, errBusy), CountsFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteStopsOnPermanentError(t *testing.T) {
	exec := NewExecutor(fastPolicy(false))
	errBad := errors.New("bad payload")

	attempts := 0
	err := exec.Execute(context.Background(), "events.publish", func(context.Context) error {
		attempts++
		return errBad
	}, nil)
	if !errors.Is(err, errBad) || attempts != 1 {
		t.Fatalf("expected one attempt with permanent error, got %d / %v", attempts, err)
	}
}

func TestExecuteHonoursCancelledContext(t *testing.T) {
	exec := NewExecutor(fastPolicy(false))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "events.publish", func(context.Context) error {
		t.Fatalf("operation must not run with a cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteOpensCircuit(t *testing.T) {
	policy := fastPolicy(true)
	policy.Attempts = 1
	exec := NewExecutor(policy)
	errDown := errors.New("no servers")

	for i := 0; i < 2; i++ {
		if err := exec.Execute(context.Background(), "events.publish", func(context.Context) error {
			return errDown
		}, nil); !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: expected broker error, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "events.publish", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if got := exec.State("events.publish"); got != gobreaker.StateOpen.String() {
		t.Fatalf("expected open state, got %s", got)
	}
	if got := exec.State("never.ran"); got != gobreaker.StateClosed.String() {
		t.Fatalf("expected closed state for unknown op, got %s", got)
	}
}

func TestBackoffIsCapped(t *testing.T) {
	p := Policy{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 25 * time.Millisecond, Multiplier: 2}
	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}
	for i, w := range want {
		if got := p.backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestWithDefaultsFillsZeroPolicy(t *testing.T) {
	p := Policy{}.withDefaults()
	def := DefaultPolicy()
	if p.Attempts != def.Attempts || p.Breaker.MinRequests != def.Breaker.MinRequests || p.MaxBackoff < p.InitialBackoff {
		t.Fatalf("unexpected normalized policy %+v", p)
	}
	if p.Breaker.Enabled {
		t.Fatalf("breaker must stay disabled unless requested")
	}
}
