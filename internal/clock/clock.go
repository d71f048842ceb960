// Package clock provides the monotonic time source and the timed suspension
// points used by the control loop.
package clock

import (
	"context"
	"time"
)

// Clock is a monotonic clock measured from boot.
type Clock interface {
	// Now returns the time elapsed since boot.
	Now() time.Duration

	// Sleep suspends the caller for d.
	// Returns ctx.Err() if the context ends first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Millis converts a since-boot duration to whole milliseconds.
// Callers doing period arithmetic rely on uint64 wraparound.
func Millis(d time.Duration) uint64 {
	return uint64(d / time.Millisecond)
}

// Real is a Clock backed by the runtime's monotonic clock.
type Real struct {
	boot time.Time
}

// NewReal creates a Real clock whose zero is the moment of the call.
func NewReal() *Real {
	return &Real{boot: time.Now()}
}

// Now returns the time elapsed since NewReal.
func (r *Real) Now() time.Duration {
	return time.Since(r.boot)
}

// Sleep blocks for d or until ctx is done.
func (r *Real) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
