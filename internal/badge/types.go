// Package badge is the badge control core: boot sequence, the active and
// idle loops, and watchdog supervision.
//
// Everything here runs on one goroutine. Hardware arrives as interfaces
// and time comes from an injected clock.Clock, so the whole core runs
// unchanged against fakes in simulated time.
package badge

import (
	"time"

	"github.com/sweeney/eye-badge/internal/mode"
)

// Timing constants.
const (
	ActiveTick      = 1 * time.Millisecond
	IdleTick        = 10 * time.Millisecond
	BootSettle      = 1 * time.Millisecond
	WatchdogTimeout = 3_000_000 * time.Microsecond
)

// PowerState is the supervisory state of the badge.
type PowerState string

const (
	PowerBooting PowerState = "BOOTING"
	PowerActive  PowerState = "ACTIVE"
	PowerIdle    PowerState = "IDLE"
	PowerOff     PowerState = "OFF"
)

// EventType is a supervisory transition.
type EventType string

const (
	EventActivated   EventType = "ACTIVATED"
	EventDeactivated EventType = "DEACTIVATED"
	EventModeChanged EventType = "MODE"
	EventShutdown    EventType = "SHUTDOWN"
)

// Event describes one transition.
type Event struct {
	At       time.Duration // since boot
	Type     EventType
	Power    PowerState
	Mode     mode.Mode
	Counters Counters
}

// Counters are running totals since boot.
type Counters struct {
	Activations   int
	ModeChanges   int
	Pets          int
	ActiveTicks   int
	IdleTicks     int
	DroppedWrites int
}

// Observer receives diagnostics from the loop. Calls are made on the loop
// goroutine and must not block.
type Observer interface {
	// Event is called on every supervisory transition.
	Event(e Event)

	// Tick is called once per loop iteration.
	Tick(c Counters)
}

// Observers fans out to several observers in order.
type Observers []Observer

// Event forwards e to every observer.
func (o Observers) Event(e Event) {
	for _, obs := range o {
		obs.Event(e)
	}
}

// Tick forwards c to every observer.
func (o Observers) Tick(c Counters) {
	for _, obs := range o {
		obs.Tick(c)
	}
}
