// Package status provides a thread-safe status tracker for the badge daemon.
// The control loop writes to it as a badge.Observer; HTTP handlers and the
// MQTT mirror read snapshots from other goroutines.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/eye-badge/internal/badge"
	"github.com/sweeney/eye-badge/internal/mode"
)

// NetworkInfo contains network state as reported by the host.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Chip     string
	PinOn    int
	PinMode  int
	MaxDuty  uint16
	PWMHz    int
	Watchdog string
	HTTPAddr string
	Broker   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	BootID        string
	Power         badge.PowerState
	Mode          mode.Mode
	Counters      badge.Counters
	LastEvent     badge.EventType
	LastEventAt   time.Duration // since boot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTDropped   int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

var _ badge.Observer = (*Tracker)(nil)

// NewTracker creates a Tracker with the given boot id, start time and config.
func NewTracker(bootID string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			BootID:    bootID,
			Power:     badge.PowerBooting,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Event records a loop transition.
func (t *Tracker) Event(e badge.Event) {
	t.mu.Lock()
	t.snap.Power = e.Power
	t.snap.Mode = e.Mode
	t.snap.Counters = e.Counters
	t.snap.LastEvent = e.Type
	t.snap.LastEventAt = e.At
	t.mu.Unlock()
}

// Tick records the loop's running counters. Called every loop iteration.
func (t *Tracker) Tick(c badge.Counters) {
	t.mu.Lock()
	t.snap.Counters = c
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTDropped records how many MQTT messages have been lost so far.
func (t *Tracker) SetMQTTDropped(total int) {
	t.mu.Lock()
	t.snap.MQTTDropped = total
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
