package badge

import (
	"github.com/sweeney/eye-badge/internal/button"
	"github.com/sweeney/eye-badge/internal/eye"
	"github.com/sweeney/eye-badge/internal/gpio"
	"github.com/sweeney/eye-badge/internal/pwm"
	"github.com/sweeney/eye-badge/internal/watchdog"
)

// Hardware is what bring-up hands to the core: claimed and configured
// handles with no behavior attached yet.
type Hardware struct {
	On   gpio.Input
	Wake gpio.EdgeWaiter // the on button's press edge
	Mode gpio.Input

	LeftRed    pwm.Channel
	LeftGreen  pwm.Channel
	RightRed   pwm.Channel
	RightGreen pwm.Channel

	Watchdog watchdog.Watchdog
}

// Peripherals owns every handle the control loop touches. It is built once
// by Boot and passed by pointer into the loop; nothing else holds it.
type Peripherals struct {
	EyeLeft  *eye.Eye
	EyeRight *eye.Eye
	BtnOn    *button.Button
	BtnMode  *button.Button
	Watchdog watchdog.Watchdog
}

// eyesOff extinguishes both eyes.
func (p *Peripherals) eyesOff() {
	p.EyeLeft.SetOff()
	p.EyeRight.SetOff()
}

func (p *Peripherals) dropped() int {
	return p.EyeLeft.Dropped() + p.EyeRight.Dropped()
}
