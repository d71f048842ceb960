//go:build !linux

package watchdog

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("watchdog: not supported on this platform (requires Linux)")

// Device is not available on non-Linux platforms.
type Device struct{}

// NewDevice returns a Device whose methods all fail.
func NewDevice(path string) *Device {
	return &Device{}
}

// Arm is not implemented on non-Linux platforms.
func (d *Device) Arm(timeout time.Duration) error { return errUnsupported }

// Pet is not implemented on non-Linux platforms.
func (d *Device) Pet() error { return errUnsupported }

// Disarm is a no-op on non-Linux platforms.
func (d *Device) Disarm() error { return nil }
