// Package mqtt mirrors badge events to an MQTT broker. Publishing is
// one-way and best-effort: nothing on the broker can change the badge.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/eye-badge/internal/badge"
)

// Topic is the MQTT topic for loop transitions.
const Topic = "badge/eyes/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "badge/eyes/system"

// Publisher mirrors loop events to the broker. Its badge.Observer methods
// are called on the loop goroutine and never block.
type Publisher interface {
	badge.Observer

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close flushes what it can and disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle event (STARTUP, SHUTDOWN, RECONNECTED).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it
	Retained   bool
}

// Payload is the message body for a loop event.
type Payload struct {
	Badge BadgePayload `json:"badge"`
}

// BadgePayload contains the loop event details.
type BadgePayload struct {
	Timestamp   string `json:"timestamp"`
	Event       string `json:"event"`
	Power       string `json:"power"`
	Mode        string `json:"mode"`
	SinceBootMs int64  `json:"since_boot_ms"`
	Activations int    `json:"activations"`
	ModeChanges int    `json:"mode_changes"`
}

// FormatPayload creates the JSON payload for a loop event observed at ts.
func FormatPayload(event badge.Event, ts time.Time) ([]byte, error) {
	payload := Payload{
		Badge: BadgePayload{
			Timestamp:   ts.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Power:       string(event.Power),
			Mode:        event.Mode.String(),
			SinceBootMs: event.At.Milliseconds(),
			Activations: event.Counters.Activations,
			ModeChanges: event.Counters.ModeChanges,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the message body for simple system events that don't
// carry a status snapshot (the will message, RECONNECTED).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
