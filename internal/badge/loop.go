package badge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweeney/eye-badge/internal/button"
	"github.com/sweeney/eye-badge/internal/clock"
	"github.com/sweeney/eye-badge/internal/eye"
	"github.com/sweeney/eye-badge/internal/mode"
	"github.com/sweeney/eye-badge/internal/watchdog"
)

// Loop is the supervisory state machine:
//
//	Boot --wake--> Active --on--> Idle --on--> Active ...
//
// The watchdog is armed while active and disarmed while idle, so a badge
// left asleep longer than WatchdogTimeout is not reset.
//
// Suspension points: the wake wait in Boot and clock sleeps (BootSettle,
// ActiveTick, IdleTick). Each active tick samples the buttons, renders,
// then pets the watchdog, in that order.
type Loop struct {
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer

	mode       mode.Mode
	power      PowerState
	armed      bool
	petFailing bool
	counters   Counters
}

// NewLoop creates a Loop starting in mode.Red. obs may be nil.
func NewLoop(clk clock.Clock, logger *slog.Logger, obs Observer) *Loop {
	if obs == nil {
		obs = Observers(nil)
	}
	return &Loop{
		clock:    clk,
		logger:   logger,
		observer: obs,
		mode:     mode.Red,
		power:    PowerBooting,
	}
}

// Mode returns the current display mode.
func (l *Loop) Mode() mode.Mode { return l.mode }

// Power returns the current supervisory state.
func (l *Loop) Power() PowerState { return l.power }

// Counters returns the running totals.
func (l *Loop) Counters() Counters { return l.counters }

// Start boots the badge and runs it until ctx ends.
func (l *Loop) Start(ctx context.Context, hw Hardware) error {
	p, err := l.Boot(ctx, hw)
	if err != nil {
		return err
	}
	return l.Run(ctx, p)
}

// Boot waits for the wake press, arms the watchdog and builds the
// peripherals. The buttons are seeded after the press so that the press
// which woke the badge is not also taken as an off press.
func (l *Loop) Boot(ctx context.Context, hw Hardware) (*Peripherals, error) {
	l.logger.Info("waiting for on button")
	if err := hw.Wake.WaitForPress(ctx); err != nil {
		return nil, fmt.Errorf("wait for on button: %w", err)
	}

	if err := l.arm(hw.Watchdog); err != nil {
		return nil, err
	}
	l.pet(hw.Watchdog)

	if err := l.clock.Sleep(ctx, BootSettle); err != nil {
		if derr := l.disarm(hw.Watchdog); derr != nil {
			l.logger.Warn("watchdog disarm failed", "err", derr)
		}
		return nil, err
	}

	p := &Peripherals{
		BtnOn:    button.New("on", hw.On, l.clock, l.logger),
		BtnMode:  button.New("mode", hw.Mode, l.clock, l.logger),
		EyeLeft:  eye.New(hw.LeftRed, hw.LeftGreen),
		EyeRight: eye.New(hw.RightRed, hw.RightGreen),
		Watchdog: hw.Watchdog,
	}
	l.logger.Info("on", "max_duty", p.EyeLeft.MaxValue())
	return p, nil
}

// Run alternates between the active and idle loops until ctx ends, then
// switches the eyes off and disarms the watchdog. It always returns a
// non-nil error from ctx.
func (l *Loop) Run(ctx context.Context, p *Peripherals) error {
	defer l.shutdown(p)

	for {
		if err := l.Active(ctx, p); err != nil {
			return err
		}
		if err := l.disarm(p.Watchdog); err != nil {
			l.logger.Warn("watchdog disarm failed", "err", err)
		}

		if err := l.Idle(ctx, p); err != nil {
			return err
		}
		if err := l.arm(p.Watchdog); err != nil {
			l.logger.Error("watchdog arm failed, retrying every tick", "err", err)
		}
	}
}

// Active renders the current mode every ActiveTick until the on button is
// pressed, then switches both eyes off.
func (l *Loop) Active(ctx context.Context, p *Peripherals) error {
	l.counters.Activations++
	l.transition(PowerActive, EventActivated)
	l.logger.Info("activated", "mode", l.mode)

	for !p.BtnOn.IsActivated() {
		if p.BtnMode.IsActivated() {
			l.mode = l.mode.Next()
			l.counters.ModeChanges++
			l.logger.Info("mode changed", "mode", l.mode)
			l.emit(EventModeChanged)
		}

		mode.Render(l.mode, clock.Millis(l.clock.Now()), p.EyeLeft, p.EyeRight)
		l.pet(p.Watchdog)

		l.counters.ActiveTicks++
		l.counters.DroppedWrites = p.dropped()
		l.observer.Tick(l.counters)

		if err := l.clock.Sleep(ctx, ActiveTick); err != nil {
			return err
		}
	}

	p.eyesOff()
	l.counters.DroppedWrites = p.dropped()
	l.logger.Info("deactivated")
	return nil
}

// Idle polls the on button every IdleTick until it is pressed. It neither
// renders nor pets the watchdog.
func (l *Loop) Idle(ctx context.Context, p *Peripherals) error {
	l.transition(PowerIdle, EventDeactivated)

	for !p.BtnOn.IsActivated() {
		l.counters.IdleTicks++
		l.observer.Tick(l.counters)

		if err := l.clock.Sleep(ctx, IdleTick); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) shutdown(p *Peripherals) {
	p.eyesOff()
	l.counters.DroppedWrites = p.dropped()
	if err := l.disarm(p.Watchdog); err != nil {
		l.logger.Warn("watchdog disarm failed", "err", err)
	}
	l.transition(PowerOff, EventShutdown)
	l.logger.Info("stopped")
}

func (l *Loop) arm(wd watchdog.Watchdog) error {
	if l.armed {
		return nil
	}
	if err := wd.Arm(WatchdogTimeout); err != nil {
		return fmt.Errorf("arm watchdog: %w", err)
	}
	l.armed = true
	return nil
}

func (l *Loop) disarm(wd watchdog.Watchdog) error {
	if !l.armed {
		return nil
	}
	l.armed = false
	return wd.Disarm()
}

// pet re-arms a watchdog whose arm failed, then restarts its countdown.
// Only the first failure of a streak is logged; at one pet per millisecond
// anything more would flood the log until the reset arrives.
func (l *Loop) pet(wd watchdog.Watchdog) {
	err := l.arm(wd)
	if err == nil {
		err = wd.Pet()
	}
	if err != nil {
		if !l.petFailing {
			l.logger.Error("watchdog pet failed", "err", err)
			l.petFailing = true
		}
		return
	}
	if l.petFailing {
		l.logger.Info("watchdog pet recovered")
		l.petFailing = false
	}
	l.counters.Pets++
}

func (l *Loop) transition(to PowerState, evt EventType) {
	l.power = to
	l.emit(evt)
}

func (l *Loop) emit(evt EventType) {
	l.observer.Event(Event{
		At:       l.clock.Now(),
		Type:     evt,
		Power:    l.power,
		Mode:     l.mode,
		Counters: l.counters,
	})
}
