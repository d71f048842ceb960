//go:build linux

package gpio

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// RealButtons owns the button lines on an actual GPIO chip.
type RealButtons struct {
	chip *gpiocdev.Chip
	on   *RealInput
	mode *RealInput
}

// RealInput is one button line. It implements both Input and EdgeWaiter.
type RealInput struct {
	line    *gpiocdev.Line
	presses chan struct{}
}

// NewRealButtons requests the on and mode button lines from the given chip.
func NewRealButtons(chipName string, pinOn, pinMode int) (*RealButtons, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, errors.Wrapf(err, "open gpio chip %s", chipName)
	}

	on, err := requestInput(chip, pinOn)
	if err != nil {
		chip.Close()
		return nil, errors.Wrapf(err, "request on pin %d", pinOn)
	}

	mode, err := requestInput(chip, pinMode)
	if err != nil {
		on.line.Close()
		chip.Close()
		return nil, errors.Wrapf(err, "request mode pin %d", pinMode)
	}

	return &RealButtons{chip: chip, on: on, mode: mode}, nil
}

// requestInput requests an active-low input with pull-up, so a closed
// contact reads as logical 1 and produces a rising edge event.
func requestInput(chip *gpiocdev.Chip, offset int) (*RealInput, error) {
	in := &RealInput{presses: make(chan struct{}, 1)}
	line, err := chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(in.handleEvent),
	)
	if err != nil {
		return nil, err
	}
	in.line = line
	return in, nil
}

// On returns the power button.
func (b *RealButtons) On() *RealInput { return b.on }

// Mode returns the mode button.
func (b *RealButtons) Mode() *RealInput { return b.mode }

// Read reports whether the contact is closed.
func (in *RealInput) Read() (bool, error) {
	v, err := in.line.Value()
	if err != nil {
		return false, errors.Wrap(err, "read line")
	}
	return v == 1, nil
}

// WaitForPress blocks until the contact closes.
func (in *RealInput) WaitForPress(ctx context.Context) error {
	// Discard presses that happened before the caller started waiting.
	select {
	case <-in.presses:
	default:
	}

	pressed, err := in.Read()
	if err != nil {
		return err
	}
	if pressed {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-in.presses:
		return nil
	}
}

func (in *RealInput) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	select {
	case in.presses <- struct{}{}:
	default:
	}
}

// Close releases the button lines and the chip.
func (b *RealButtons) Close() error {
	var errs []error

	if b.on != nil {
		if err := b.on.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close on pin: %w", err))
		}
	}
	if b.mode != nil {
		if err := b.mode.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mode pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
