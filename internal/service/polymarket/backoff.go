package polymarket

import (
	"context"
	"sync"
	"time"
)

// Backoff is the shared retry schedule for throttled upstream calls.
// One instance covers all endpoints, approximating a single global rate
// budget rather than per-endpoint budgets.
type Backoff struct {
	mu      sync.Mutex
	initial time.Duration
	max     time.Duration
	mult    float64
	current time.Duration
}

// NewBackoff creates a backoff schedule starting at initial, growing by
// mult per retry and capped at max.
func NewBackoff(initial, max time.Duration, mult float64) *Backoff {
	if initial <= 0 {
		initial = time.Second
	}
	if max < initial {
		max = initial
	}
	if mult <= 1 {
		mult = 2
	}
	return &Backoff{initial: initial, max: max, mult: mult, current: initial}
}

// Next returns the current delay and advances the schedule.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.current
	next := time.Duration(float64(b.current) * b.mult)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return d
}

// Reset returns the schedule to its floor after a successful call.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.current = b.initial
	b.mu.Unlock()
}

// Current returns the delay the next throttled call would sleep for.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Sleep waits for d or until ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
