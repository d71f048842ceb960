package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sweeney/eye-badge/internal/badge"
	"github.com/sweeney/eye-badge/internal/clock"
	"github.com/sweeney/eye-badge/internal/gpio"
	"github.com/sweeney/eye-badge/internal/mode"
	"github.com/sweeney/eye-badge/internal/mqtt"
	"github.com/sweeney/eye-badge/internal/pwm"
	"github.com/sweeney/eye-badge/internal/status"
	"github.com/sweeney/eye-badge/internal/watchdog"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// press is a button hold over [at, at+dur) of simulated time.
type press struct{ at, dur time.Duration }

func pressed(now time.Duration, presses []press) bool {
	for _, p := range presses {
		if now >= p.at && now < p.at+p.dur {
			return true
		}
	}
	return false
}

// bench is a whole badge on fakes: the loop feeding a status tracker and
// an MQTT publisher, with scripted button presses.
type bench struct {
	clk     *clock.Fake
	on      *gpio.FakeInput
	mode    *gpio.FakeInput
	wake    *gpio.FakeWaiter
	wd      *watchdog.Fake
	lr, lg  *pwm.FakeChannel
	rr, rg  *pwm.FakeChannel
	tracker *status.Tracker
	pub     *mqtt.FakePublisher

	onPresses   []press
	modePresses []press
	stopAt      time.Duration
	checks      map[time.Duration]func()
}

func newBench(stopAt time.Duration) *bench {
	b := &bench{
		clk:     clock.NewFake(0),
		on:      gpio.NewFakeInput(),
		mode:    gpio.NewFakeInput(),
		wake:    &gpio.FakeWaiter{},
		lr:      pwm.NewFakeChannel(1000),
		lg:      pwm.NewFakeChannel(1000),
		rr:      pwm.NewFakeChannel(1000),
		rg:      pwm.NewFakeChannel(1000),
		tracker: status.NewTracker("boot-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{}),
		pub:     mqtt.NewFakePublisher(),
		stopAt:  stopAt,
		checks:  map[time.Duration]func(){},
	}
	b.wd = &watchdog.Fake{Now: b.clk.Now}
	b.wake.OnWait = func() { b.on.Set(pressed(0, b.onPresses)) }
	return b
}

func (b *bench) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.clk.OnSleep = func(now time.Duration) {
		b.on.Set(pressed(now, b.onPresses))
		b.mode.Set(pressed(now, b.modePresses))
		if check, ok := b.checks[now]; ok {
			check()
		}
		if now >= b.stopAt {
			cancel()
		}
	}

	loop := badge.NewLoop(b.clk, discard, badge.Observers{b.tracker, b.pub})
	err := loop.Start(ctx, badge.Hardware{
		On:         b.on,
		Wake:       b.wake,
		Mode:       b.mode,
		LeftRed:    b.lr,
		LeftGreen:  b.lg,
		RightRed:   b.rr,
		RightGreen: b.rg,
		Watchdog:   b.wd,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Start: got %v, want context.Canceled", err)
	}
}

func (b *bench) allOff() bool {
	for _, ch := range []*pwm.FakeChannel{b.lr, b.lg, b.rr, b.rg} {
		if ch.Duty != ch.Max {
			return false
		}
	}
	return true
}

// TestIntegrationFullFlow wakes the badge, cycles through every mode back
// to red, switches off, switches on again and shuts down.
func TestIntegrationFullFlow(t *testing.T) {
	b := newBench(4500 * time.Millisecond)
	b.onPresses = []press{
		{0, 100 * time.Millisecond}, // wake
		{3000 * time.Millisecond, 50 * time.Millisecond},
		{4000 * time.Millisecond, 50 * time.Millisecond},
	}
	for i := 1; i <= 5; i++ {
		b.modePresses = append(b.modePresses, press{time.Duration(i) * 500 * time.Millisecond, 50 * time.Millisecond})
	}

	var yellowLeft, yellowRight [2]uint16
	b.checks[1200*time.Millisecond] = func() {
		yellowLeft = [2]uint16{b.lr.Duty, b.lg.Duty}
		yellowRight = [2]uint16{b.rr.Duty, b.rg.Duty}
	}
	var offWhileIdle bool
	b.checks[3500*time.Millisecond] = func() { offWhileIdle = b.allOff() }

	b.run(t)

	types := b.pub.EventTypes()
	want := []badge.EventType{
		badge.EventActivated,
		badge.EventModeChanged, badge.EventModeChanged, badge.EventModeChanged,
		badge.EventModeChanged, badge.EventModeChanged,
		badge.EventDeactivated,
		badge.EventActivated,
		badge.EventShutdown,
	}
	if len(types) != len(want) {
		t.Fatalf("events: got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, types[i], want[i])
		}
	}

	wantModes := []mode.Mode{mode.Green, mode.Yellow, mode.Blink, mode.Fade, mode.Red}
	for i, m := range wantModes {
		if got := b.pub.Events[1+i].Mode; got != m {
			t.Errorf("mode change %d: got %s, want %s", i, got, m)
		}
	}

	// Yellow: green channel fully on, red at one eighth.
	if yellowLeft != [2]uint16{875, 0} || yellowRight != [2]uint16{875, 0} {
		t.Errorf("yellow duties: left %v right %v, want [875 0]", yellowLeft, yellowRight)
	}
	if !offWhileIdle {
		t.Error("eyes should be off while idle")
	}
	if !b.allOff() {
		t.Error("eyes should be off after shutdown")
	}

	if b.wd.Arms != 2 || b.wd.Disarms != 2 || b.wd.Armed {
		t.Errorf("watchdog: arms=%d disarms=%d armed=%v, want 2/2/false", b.wd.Arms, b.wd.Disarms, b.wd.Armed)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(b.tracker.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	if sj.Status.Power != "OFF" || sj.Status.Mode != "RED" {
		t.Errorf("status: power=%s mode=%s, want OFF/RED", sj.Status.Power, sj.Status.Mode)
	}
	c := sj.Status.Counters
	if c.Activations != 2 || c.ModeChanges != 5 {
		t.Errorf("counters: got %+v", c)
	}
	if c.Pets != c.ActiveTicks+1 {
		t.Errorf("pets: got %d, want one per active tick plus boot (%d)", c.Pets, c.ActiveTicks+1)
	}
	if c.IdleTicks == 0 {
		t.Error("expected idle ticks")
	}
}

// TestIntegrationWatchdogNeverStarvedWhileActive checks that no gap
// between pets inside an active period comes near the timeout.
func TestIntegrationWatchdogNeverStarvedWhileActive(t *testing.T) {
	b := newBench(10 * time.Second)
	b.onPresses = []press{
		{0, 100 * time.Millisecond},
		{2 * time.Second, 50 * time.Millisecond},
		{6 * time.Second, 50 * time.Millisecond},
	}

	b.run(t)

	idleFrom, idleTo := 2*time.Second, 6*time.Second
	for i := 1; i < len(b.wd.PetTimes); i++ {
		prev, cur := b.wd.PetTimes[i-1], b.wd.PetTimes[i]
		if prev < idleFrom && cur >= idleTo {
			continue
		}
		if gap := cur - prev; gap > badge.ActiveTick {
			t.Fatalf("gap of %v between pets at %v", gap, cur)
		}
	}
	for _, at := range b.wd.PetTimes {
		if at > idleFrom && at < idleTo {
			t.Fatalf("pet at %v while idle", at)
		}
	}
}

// TestIntegrationHeldOnButtonActivatesOnce holds the on button for two
// seconds after waking: the badge must stay active.
func TestIntegrationHeldOnButtonActivatesOnce(t *testing.T) {
	b := newBench(3 * time.Second)
	b.onPresses = []press{{0, 2 * time.Second}}

	b.run(t)

	types := b.pub.EventTypes()
	if len(types) != 2 || types[0] != badge.EventActivated || types[1] != badge.EventShutdown {
		t.Errorf("events: got %v, want [ACTIVATED SHUTDOWN]", types)
	}
}

// TestIntegrationRejectedWritesDoNotStopLoop fails every write on one
// channel and checks the loop carries on and reports the drops.
func TestIntegrationRejectedWritesDoNotStopLoop(t *testing.T) {
	b := newBench(time.Second)
	b.onPresses = []press{{0, 100 * time.Millisecond}}
	b.rr.SetError = errors.New("timer stopped")

	b.run(t)

	snap := b.tracker.Snapshot()
	if snap.Counters.ActiveTicks < 900 {
		t.Errorf("active ticks: got %d, want the loop to keep running", snap.Counters.ActiveTicks)
	}
	if snap.Counters.DroppedWrites != b.rr.Rejected {
		t.Errorf("dropped writes: got %d, want %d", snap.Counters.DroppedWrites, b.rr.Rejected)
	}
	if b.rr.Rejected == 0 {
		t.Error("expected rejected writes on right red")
	}
	if b.lr.Rejected != 0 {
		t.Errorf("left red should be unaffected, got %d rejected", b.lr.Rejected)
	}
}
