package pwm

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// InitHost loads the periph host drivers. Call once before NewPinChannel.
func InitHost() error {
	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "init periph host")
	}
	return nil
}

// PinChannel drives one LED pin through periph's PWM support.
// Duty values in [0, max] are scaled onto gpio.DutyMax.
type PinChannel struct {
	pin  gpio.PinIO
	max  uint16
	freq physic.Frequency

	last    uint16
	written bool
}

// NewPinChannel looks up the named pin (e.g. "GPIO12") and wraps it as a
// channel with the given logical range and frequency.
func NewPinChannel(name string, max uint16, freqHz int) (*PinChannel, error) {
	if max == 0 {
		return nil, errors.New("pwm: max duty must be positive")
	}
	if freqHz <= 0 {
		return nil, errors.Errorf("pwm: invalid frequency %d Hz", freqHz)
	}

	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("pwm: no pin named %q", name)
	}

	return &PinChannel{
		pin:  p,
		max:  max,
		freq: physic.Frequency(freqHz) * physic.Hertz,
	}, nil
}

// MaxDutyCycle returns the logical duty value for 100%.
func (c *PinChannel) MaxDutyCycle() uint16 {
	return c.max
}

// SetDutyCycle programs the pin. Repeating the previous value is a no-op so
// the control loop can re-render every tick without touching the hardware.
func (c *PinChannel) SetDutyCycle(duty uint16) error {
	if duty > c.max {
		return ErrDutyOutOfRange
	}
	if c.written && duty == c.last {
		return nil
	}

	d := gpio.Duty(uint64(duty) * uint64(gpio.DutyMax) / uint64(c.max))
	if err := c.pin.PWM(d, c.freq); err != nil {
		return errors.Wrapf(err, "pwm %s", c.pin.Name())
	}

	c.last = duty
	c.written = true
	return nil
}

// Halt stops the PWM output on the pin.
func (c *PinChannel) Halt() error {
	c.written = false
	return c.pin.Halt()
}
