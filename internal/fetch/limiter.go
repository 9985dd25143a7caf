package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between catalog calls
// (10 calls per second).
const DefaultInterval = 100 * time.Millisecond

// Limiter enforces a global minimum interval between admitted calls, shared
// by every worker. The only state is the instant the last admitted call was
// scheduled for.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewLimiter creates a limiter admitting at most one call per interval.
func NewLimiter(interval time.Duration) *Limiter {
	if interval < 0 {
		interval = 0
	}
	return &Limiter{interval: interval}
}

// NewLimiterPerSecond creates a limiter admitting at most n calls per second.
// n <= 0 selects DefaultInterval.
func NewLimiterPerSecond(n int) *Limiter {
	if n <= 0 {
		return NewLimiter(DefaultInterval)
	}
	return NewLimiter(time.Second / time.Duration(n))
}

// Interval returns the minimum spacing between admitted calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until the caller may issue its call. Slots are reserved under
// the lock, so concurrent callers are admitted at least one interval apart,
// in reservation order. If ctx ends first its error is returned; the
// reserved slot is then left unused.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := time.Now()
	slot := now
	if next := l.last.Add(l.interval); !l.last.IsZero() && next.After(now) {
		slot = next
	}
	l.last = slot
	l.mu.Unlock()

	delay := slot.Sub(now)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
