// Package watchdog wraps the hardware watchdog that resets the device when
// the control loop stops petting it.
package watchdog

import (
	"errors"
	"time"
)

// Watchdog is a hardware reset timer.
type Watchdog interface {
	// Arm starts the countdown with the given timeout. Arming an armed
	// watchdog only changes the timeout.
	Arm(timeout time.Duration) error

	// Pet restarts the countdown.
	Pet() error

	// Disarm stops the countdown.
	Disarm() error
}

// DefaultDevice is the kernel watchdog device.
const DefaultDevice = "/dev/watchdog"

// ErrNotArmed is returned by Pet on a watchdog that is not armed.
var ErrNotArmed = errors.New("watchdog: not armed")
