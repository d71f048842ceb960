// Package button turns a noisy button contact into single-shot press events.
package button

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sweeney/eye-badge/internal/clock"
	"github.com/sweeney/eye-badge/internal/gpio"
)

// DebounceWindow is the refractory period after an accepted press during
// which the contact is not evaluated.
const DebounceWindow = 250 * time.Millisecond

// Button reports debounced press edges of one contact. It is polled, not
// interrupt driven, and must only be used from one goroutine.
type Button struct {
	name   string
	input  gpio.Input
	clock  clock.Clock
	logger *slog.Logger

	lastState      bool
	lastActivation time.Duration
}

// New seeds the button from one read of input, so a button already held
// at construction does not report a press.
// It panics if the input cannot be read.
func New(name string, input gpio.Input, clk clock.Clock, logger *slog.Logger) *Button {
	b := &Button{
		name:   name,
		input:  input,
		clock:  clk,
		logger: logger,
	}
	b.lastState = b.read()
	b.lastActivation = clk.Now()
	return b
}

// Name returns the button's name.
func (b *Button) Name() string {
	return b.name
}

// IsActivated samples the contact once and reports whether this sample is
// a press (open to closed) outside the debounce window. Releases and reads
// inside the window are absorbed.
// It panics if the input cannot be read.
func (b *Button) IsActivated() bool {
	newState := b.read()
	now := b.clock.Now()

	if now-b.lastActivation <= DebounceWindow {
		return false
	}

	switch {
	case !b.lastState && newState:
		b.lastState = true
		b.lastActivation = now
		b.logger.Debug("button pushed", "button", b.name, "at", now)
		return true
	case b.lastState && !newState:
		b.lastState = false
	}
	return false
}

// read treats a failed read as unrecoverable: a plain digital input has no
// failure mode the loop could degrade around.
func (b *Button) read() bool {
	v, err := b.input.Read()
	if err != nil {
		panic(fmt.Errorf("button %s: read input: %w", b.name, err))
	}
	return v
}
