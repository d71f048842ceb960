// Package mode defines the badge display modes and how each one renders
// onto the two eyes.
package mode

import "fmt"

// Mode is a display behavior. The zero value is Red.
type Mode uint8

// Modes in cycle order.
const (
	Red Mode = iota
	Green
	Yellow
	Blink
	Fade

	numModes
)

// Periods of the animated modes, in milliseconds.
const (
	BlinkPeriod uint64 = 1000
	FadePeriod  uint64 = 4000
)

var names = [numModes]string{"RED", "GREEN", "YELLOW", "BLINK", "FADE"}

// Next returns the following mode, wrapping Fade back to Red.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// String returns the upper-case mode name.
func (m Mode) String() string {
	if m >= numModes {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return names[m]
}

// All returns every mode in cycle order.
func All() []Mode {
	return []Mode{Red, Green, Yellow, Blink, Fade}
}

// Renderer is one eye as seen by a mode.
type Renderer interface {
	SetRed()
	SetGreen()
	SetValue(red, green uint16)
	MaxValue() uint16
}

// Render draws mode m at time nowMs (milliseconds since boot) onto both eyes.
// It is a pure function of (m, nowMs) and is re-evaluated every tick.
func Render(m Mode, nowMs uint64, left, right Renderer) {
	full := left.MaxValue()

	switch m {
	case Red:
		left.SetRed()
		right.SetRed()
	case Green:
		left.SetGreen()
		right.SetGreen()
	case Yellow:
		left.SetValue(full, full)
		right.SetValue(full, full)
	case Blink:
		if nowMs%BlinkPeriod < BlinkPeriod/2 {
			left.SetRed()
			right.SetGreen()
		} else {
			left.SetGreen()
			right.SetRed()
		}
	case Fade:
		half := FadePeriod / 2
		ms := nowMs % FadePeriod
		fade := uint16(uint32(ms%half) * uint32(full) / uint32(half))
		if ms < half {
			left.SetValue(fade, full-fade)
			right.SetValue(fade, full-fade)
		} else {
			left.SetValue(full-fade, fade)
			right.SetValue(full-fade, fade)
		}
	}
}
