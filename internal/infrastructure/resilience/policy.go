package resilience

import "time"

// Policy configures retry backoff and the per-operation circuit breaker.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	Breaker BreakerPolicy
}

type BreakerPolicy struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

// DefaultPolicy suits fire-and-forget event publishing: a few quick retries,
// then fail fast while the broker is unreachable.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:       3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     250 * time.Millisecond,
		Multiplier:     2.0,
		Breaker: BreakerPolicy{
			Enabled:          true,
			MinRequests:      5,
			FailureRatio:     0.5,
			OpenTimeout:      15 * time.Second,
			HalfOpenMaxCalls: 1,
		},
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()

	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = max(def.MaxBackoff, p.InitialBackoff)
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}

	b := &p.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenTimeout <= 0 {
		b.OpenTimeout = def.Breaker.OpenTimeout
	}
	if b.HalfOpenMaxCalls == 0 {
		b.HalfOpenMaxCalls = def.Breaker.HalfOpenMaxCalls
	}
	return p
}

// backoff returns the wait before attempt n+1 (n starts at 1).
func (p Policy) backoff(n int) time.Duration {
	wait := float64(p.InitialBackoff)
	for i := 1; i < n; i++ {
		wait *= p.Multiplier
		if time.Duration(wait) >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return time.Duration(wait)
}
