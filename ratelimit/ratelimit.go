// Package ratelimit provides a token-bucket limiter used to pace
// provider API calls. One limiter is shared by every client a provider
// creates, including the per-region clients, so it must tolerate
// concurrent callers.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Option configures a Limiter.
type Option func(*Limiter)

// WithCapacity sets the maximum burst capacity. Without this option the
// capacity defaults to the rate rounded down (minimum 1).
func WithCapacity(capacity int) Option {
	return func(l *Limiter) {
		if capacity > 0 {
			l.capacity = float64(capacity)
		}
	}
}

// Limiter is a token-bucket rate limiter. Tokens accrue at a constant
// rate up to the capacity; each operation consumes tokens.
//
// Invariants: the token count never exceeds the capacity and never goes
// negative after a successful acquire.
type Limiter struct {
	rate     float64 // tokens per second
	capacity float64

	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// New creates a Limiter that allows rate operations per second.
// A non-positive rate is clamped to one operation per second.
func New(rate float64, opts ...Option) *Limiter {
	if rate <= 0 {
		rate = 1
	}

	l := &Limiter{
		rate:     rate,
		capacity: float64(int(rate)),
	}
	if l.capacity < 1 {
		l.capacity = 1
	}

	for _, opt := range opts {
		opt(l)
	}

	l.tokens = l.capacity
	l.lastUpdate = time.Now()
	return l
}

// refill credits tokens for the wall-clock time elapsed since the last
// update. Callers must hold l.mu.
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.tokens = min(l.capacity, l.tokens+elapsed*l.rate)
	l.lastUpdate = now
}

// Acquire blocks until n tokens are available, then deducts them.
// The wait is bounded by n/rate. The lock is released while sleeping so
// concurrent callers are not starved; the refill-and-check loop repeats
// after each sleep, so tokens are never double-spent.
func (l *Limiter) Acquire(ctx context.Context, n int) error {
	need := float64(n)

	for {
		l.mu.Lock()
		l.refill(time.Now())
		if l.tokens >= need {
			l.tokens -= need
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((need - l.tokens) / l.rate * float64(time.Second))
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire deducts n tokens if they are available without blocking.
// It reports whether the tokens were acquired.
func (l *Limiter) TryAcquire(n int) bool {
	need := float64(n)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())
	if l.tokens >= need {
		l.tokens -= need
		return true
	}
	return false
}
