// Package mqtt mirrors interrupt notifications and daemon lifecycle events
// to an MQTT broker, with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicInterrupt is the MQTT topic for live interrupt notifications.
const TopicInterrupt = "gpiod/interrupt/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "gpiod/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishInterrupt sends an interrupt notification to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishInterrupt(event InterruptEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// InterruptEvent is one live (debounced) interrupt.
type InterruptEvent struct {
	Timestamp time.Time
	Name      string
	Pin       int
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload of an interrupt.
type Payload struct {
	Interrupt InterruptPayload `json:"interrupt"`
}

// InterruptPayload contains the interrupt details.
type InterruptPayload struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Pin       int    `json:"pin"`
}

// FormatPayload creates the JSON payload for an interrupt event.
func FormatPayload(event InterruptEvent) ([]byte, error) {
	payload := Payload{
		Interrupt: InterruptPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Name:      event.Name,
			Pin:       event.Pin,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
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
