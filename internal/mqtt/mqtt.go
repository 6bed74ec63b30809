// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicEvents carries charging state transitions.
const TopicEvents = "energy/evcc/panel/events"

// TopicSystem carries daemon lifecycle events.
const TopicSystem = "energy/evcc/panel/system"

// ChargeEventType marks a charging transition on a loadpoint.
type ChargeEventType string

const (
	ChargingStarted ChargeEventType = "CHARGING_STARTED"
	ChargingStopped ChargeEventType = "CHARGING_STOPPED"
)

// ChargeEvent is published when a loadpoint starts or stops charging.
type ChargeEvent struct {
	Timestamp   time.Time
	Type        ChargeEventType
	Loadpoint   int // 1-based, matching the evcc UI
	Title       string
	ChargePower float64
}

// SystemEvent is a daemon lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Retained  bool
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishCharge sends a charging transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishCharge(event ChargeEvent) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ChargePayload is the JSON wire form of a ChargeEvent.
type ChargePayload struct {
	Charging ChargePayloadInner `json:"charging"`
}

// ChargePayloadInner contains the charge event details.
type ChargePayloadInner struct {
	Timestamp   string  `json:"timestamp"`
	Event       string  `json:"event"`
	Loadpoint   int     `json:"loadpoint"`
	Title       string  `json:"title,omitempty"`
	ChargePower float64 `json:"charge_power"`
}

// FormatChargePayload creates the JSON payload for a charge event.
func FormatChargePayload(event ChargeEvent) ([]byte, error) {
	return json.Marshal(ChargePayload{
		Charging: ChargePayloadInner{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Loadpoint:   event.Loadpoint,
			Title:       event.Title,
			ChargePower: event.ChargePower,
		},
	})
}

// SystemPayload is the JSON wire form of a SystemEvent.
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
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
