// Package eye drives one dual-color LED eye from two PWM channels.
//
// The LEDs sink current into the pins, so duty cycles are inverted: a duty
// of MaxValue is fully off and 0 is fully on.
package eye

import "github.com/sweeney/eye-badge/internal/pwm"

// RedShift compresses the red intensity to one eighth before inversion.
// The red die is far brighter than the green one at equal duty.
const RedShift = 3

// Eye maps logical (red, green) intensities onto its two channels.
// Both channels are expected to share one timer and so one maximum.
type Eye struct {
	red     pwm.Channel
	green   pwm.Channel
	max     uint16
	dropped int
}

// New wraps the two channels and switches the eye off.
func New(red, green pwm.Channel) *Eye {
	e := &Eye{
		red:   red,
		green: green,
		max:   green.MaxDutyCycle(),
	}
	e.SetOff()
	return e
}

// MaxValue is the full logical intensity, for callers that scale
// intermediate brightness.
func (e *Eye) MaxValue() uint16 {
	return e.max
}

// SetValue sets both intensities, each in [0, MaxValue]. Larger values are
// treated as MaxValue.
func (e *Eye) SetValue(red, green uint16) {
	red = min(red, e.max)
	green = min(green, e.max)

	e.write(e.green, e.max-green)
	e.write(e.red, e.max-(red>>RedShift))
}

// SetRed shows full red.
func (e *Eye) SetRed() {
	e.SetValue(e.max, 0)
}

// SetGreen shows full green.
func (e *Eye) SetGreen() {
	e.SetValue(0, e.max)
}

// SetOff extinguishes both channels.
func (e *Eye) SetOff() {
	e.write(e.green, e.max)
	e.write(e.red, e.max)
}

// Dropped returns how many channel writes the hardware rejected.
func (e *Eye) Dropped() int {
	return e.dropped
}

// write is best effort. A lost LED update is cosmetic and must not stop
// the control loop, so the error is discarded after counting it.
func (e *Eye) write(ch pwm.Channel, duty uint16) {
	if err := ch.SetDutyCycle(duty); err != nil {
		e.dropped++
	}
}
