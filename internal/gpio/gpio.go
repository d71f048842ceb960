// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "context"

// Input reads the raw level of one button contact.
type Input interface {
	// Read reports whether the contact is closed (button held).
	// No debouncing is applied.
	Read() (bool, error)
}

// EdgeWaiter blocks until a button is pressed.
type EdgeWaiter interface {
	// WaitForPress returns once the contact is closed, immediately if it
	// already is. Returns ctx.Err() if the context ends first.
	WaitForPress(ctx context.Context) error
}

// Default wiring (BCM numbering). Both buttons short the line to ground
// against the internal pull-up, so a closed contact reads low.
const (
	DefaultChip    = "gpiochip0"
	DefaultPinOn   = 17
	DefaultPinMode = 27
)
