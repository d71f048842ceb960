package clock

import (
	"context"
	"time"
)

// Fake is a simulated Clock for tests. Sleep advances time instantly.
// Not safe for concurrent use.
type Fake struct {
	now time.Duration

	// Sleeps records every requested sleep duration in order.
	Sleeps []time.Duration

	// OnSleep, if set, is called after each Sleep has advanced the clock.
	// Tests use it to change inputs or cancel the context at a given time.
	OnSleep func(now time.Duration)
}

// NewFake creates a Fake clock starting at start.
func NewFake(start time.Duration) *Fake {
	return &Fake{now: start}
}

// Now returns the simulated time.
func (f *Fake) Now() time.Duration {
	return f.now
}

// Advance moves the simulated time forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.now += d
}

// Set jumps the simulated time to t.
func (f *Fake) Set(t time.Duration) {
	f.now = t
}

// Sleep advances the simulated time by d and runs OnSleep.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.now += d
	f.Sleeps = append(f.Sleeps, d)
	if f.OnSleep != nil {
		f.OnSleep(f.now)
	}
	return ctx.Err()
}
