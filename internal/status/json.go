package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	BootID        string       `json:"boot_id"`
	Power         string       `json:"power"`
	Mode          string       `json:"mode"`
	LastEvent     string       `json:"last_event,omitempty"`
	LastEventMs   int64        `json:"last_event_ms"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counters      CountersJSON `json:"counters"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Dropped   int    `json:"dropped"` // messages lost to a full queue or buffer
}

// CountersJSON is the JSON representation of the loop counters.
type CountersJSON struct {
	Activations   int `json:"activations"`
	ModeChanges   int `json:"mode_changes"`
	Pets          int `json:"watchdog_pets"`
	ActiveTicks   int `json:"active_ticks"`
	IdleTicks     int `json:"idle_ticks"`
	DroppedWrites int `json:"dropped_writes"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip     string `json:"chip"`
	PinOn    int    `json:"pin_on"`
	PinMode  int    `json:"pin_mode"`
	MaxDuty  uint16 `json:"max_duty"`
	PWMHz    int    `json:"pwm_hz"`
	Watchdog string `json:"watchdog"`
	HTTPAddr string `json:"http_addr"`
	Broker   string `json:"broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Counters
	return StatusInner{
		BootID:        snap.BootID,
		Power:         string(snap.Power),
		Mode:          snap.Mode.String(),
		LastEvent:     string(snap.LastEvent),
		LastEventMs:   snap.LastEventAt.Milliseconds(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker, Dropped: snap.MQTTDropped},
		Counters: CountersJSON{
			Activations:   c.Activations,
			ModeChanges:   c.ModeChanges,
			Pets:          c.Pets,
			ActiveTicks:   c.ActiveTicks,
			IdleTicks:     c.IdleTicks,
			DroppedWrites: c.DroppedWrites,
		},
		Config: ConfigJSON{
			Chip:     snap.Config.Chip,
			PinOn:    snap.Config.PinOn,
			PinMode:  snap.Config.PinMode,
			MaxDuty:  snap.Config.MaxDuty,
			PWMHz:    snap.Config.PWMHz,
			Watchdog: snap.Config.Watchdog,
			HTTPAddr: snap.Config.HTTPAddr,
			Broker:   snap.Config.Broker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
