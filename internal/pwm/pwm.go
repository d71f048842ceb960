// Package pwm provides LED duty-cycle channels with hardware abstraction.
package pwm

import "errors"

// Channel is one PWM output.
type Channel interface {
	// MaxDutyCycle returns the duty value for a 100% duty cycle.
	// It is fixed by the timer configuration and never changes.
	MaxDutyCycle() uint16

	// SetDutyCycle programs the duty value, which must be in
	// [0, MaxDutyCycle()]. Writes are best effort: callers may discard
	// the error.
	SetDutyCycle(duty uint16) error
}

// ErrDutyOutOfRange is returned for a duty value above MaxDutyCycle.
var ErrDutyOutOfRange = errors.New("pwm: duty cycle out of range")

// Defaults for the LED timers.
const (
	DefaultFrequencyHz = 500
	DefaultMaxDuty     = 1000
)

// Default pin names for the four LED channels.
const (
	DefaultLeftGreen  = "GPIO5"
	DefaultLeftRed    = "GPIO6"
	DefaultRightGreen = "GPIO20"
	DefaultRightRed   = "GPIO21"
)
