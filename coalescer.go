package recolor

import (
	"context"
	"time"
)

// DefaultCoalesceInterval is the minimum time between two checkpoints
// requested for the same color field.
const DefaultCoalesceInterval = 1500 * time.Millisecond

// Checkpointer is the host undo service.
type Checkpointer interface {
	RequestCheckpoint(ctx context.Context, reason string) error
}

// CheckpointerFunc adapts a function to Checkpointer.
type CheckpointerFunc func(ctx context.Context, reason string) error

// RequestCheckpoint implements Checkpointer.
func (f CheckpointerFunc) RequestCheckpoint(ctx context.Context, reason string) error {
	if f == nil {
		return nil
	}
	return f(ctx, reason)
}

type noopCheckpointer struct{}

func (noopCheckpointer) RequestCheckpoint(context.Context, string) error { return nil }

// Coalescer throttles checkpoint requests per key so that a burst of edits to
// one color field collapses into a single undo step. It is not safe for
// concurrent use.
type Coalescer struct {
	interval time.Duration
	now      func() time.Time
	last     map[string]time.Time
}

// NewCoalescer builds a coalescer. A non-positive interval falls back to
// DefaultCoalesceInterval and a nil clock to time.Now.
func NewCoalescer(interval time.Duration, now func() time.Time) *Coalescer {
	if interval <= 0 {
		interval = DefaultCoalesceInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Coalescer{
		interval: interval,
		now:      now,
		last:     map[string]time.Time{},
	}
}

// Interval returns the configured minimum interval.
func (c *Coalescer) Interval() time.Duration {
	return c.interval
}

// Allow reports whether an edit on key should request a checkpoint. When it
// does, the key's timer restarts; skipped edits leave the timer alone.
func (c *Coalescer) Allow(key string) bool {
	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) <= c.interval {
		return false
	}
	c.last[key] = now
	return true
}

// Forget drops the timer for key.
func (c *Coalescer) Forget(key string) {
	delete(c.last, key)
}

// Reset drops every timer.
func (c *Coalescer) Reset() {
	clear(c.last)
}
