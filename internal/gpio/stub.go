//go:build !linux

package gpio

import (
	"context"
	"errors"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

// RealInput is not available on non-Linux platforms.
type RealInput struct{}

// NewRealButtons returns an error on non-Linux platforms.
func NewRealButtons(chipName string, pinOn, pinMode int) (*RealButtons, error) {
	return nil, errUnsupported
}

// On is not implemented on non-Linux platforms.
func (b *RealButtons) On() *RealInput { return &RealInput{} }

// Mode is not implemented on non-Linux platforms.
func (b *RealButtons) Mode() *RealInput { return &RealInput{} }

// Read is not implemented on non-Linux platforms.
func (in *RealInput) Read() (bool, error) {
	return false, errUnsupported
}

// WaitForPress is not implemented on non-Linux platforms.
func (in *RealInput) WaitForPress(ctx context.Context) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *RealButtons) Close() error {
	return nil
}
