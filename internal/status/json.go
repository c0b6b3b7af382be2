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
	Event         string          `json:"event,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     string          `json:"start_time"`
	Timestamp     string          `json:"timestamp"`
	Session       *SessionJSON    `json:"session,omitempty"`
	Sessions      int             `json:"sessions"`
	Commands      int             `json:"commands"`
	Errors        int             `json:"errors"`
	Interrupts    []InterruptJSON `json:"interrupts"`
	Display       DisplayJSON     `json:"display"`
	MQTT          MQTTStatus      `json:"mqtt"`
	Network       *NetworkJSON    `json:"network,omitempty"`
	Config        ConfigJSON      `json:"config"`
}

// SessionJSON is the JSON representation of the connected client.
type SessionJSON struct {
	ID       string `json:"id"`
	Since    string `json:"since"`
	Commands int    `json:"commands"`
}

// InterruptJSON is the JSON representation of one interrupt binding.
type InterruptJSON struct {
	Name       string `json:"name"`
	Pin        int    `json:"pin"`
	Fired      int    `json:"fired"`
	Suppressed int    `json:"suppressed"`
	LastFired  string `json:"last_fired,omitempty"`
}

// DisplayJSON reports LCD state.
type DisplayJSON struct {
	Ready bool `json:"ready"`
	DI    int  `json:"di_pin"`
	LED   int  `json:"led_pin"`
	CS    int  `json:"spi_cs"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
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
	Socket        string `json:"socket"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
	IdleTimeoutMs int64  `json:"idle_timeout_ms"`
	Mock          bool   `json:"mock,omitempty"`
}

func buildInterrupts(snap Snapshot) []InterruptJSON {
	irqs := make([]InterruptJSON, len(snap.Interrupts))
	for i, irq := range snap.Interrupts {
		irqs[i] = InterruptJSON{
			Name:       irq.Name,
			Pin:        irq.Pin,
			Fired:      irq.Fired,
			Suppressed: irq.Suppressed,
		}
		if !irq.LastFired.IsZero() {
			irqs[i].LastFired = irq.LastFired.UTC().Format(time.RFC3339)
		}
	}
	return irqs
}

func buildInner(snap Snapshot) StatusInner {
	irqs := buildInterrupts(snap)

	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Sessions:      snap.Sessions,
		Commands:      snap.Commands,
		Errors:        snap.Errors,
		Interrupts:    irqs,
		Display: DisplayJSON{
			Ready: snap.DisplayReady,
			DI:    snap.Config.LCDDI,
			LED:   snap.Config.LCDLED,
			CS:    snap.Config.LCDCS,
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Socket:        snap.Config.Socket,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
			IdleTimeoutMs: snap.Config.IdleTimeoutMs,
			Mock:          snap.Config.Mock,
		},
	}
	if snap.Session != nil {
		inner.Session = &SessionJSON{
			ID:       snap.Session.ID,
			Since:    snap.Session.Since.UTC().Format(time.RFC3339),
			Commands: snap.Session.Commands,
		}
	}
	return inner
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

// InterruptsJSON is the envelope of the interrupt counters view.
type InterruptsJSON struct {
	Timestamp  string          `json:"timestamp"`
	Interrupts []InterruptJSON `json:"interrupts"`
}

// FormatInterrupts returns only the interrupt bindings and their counters.
func FormatInterrupts(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(InterruptsJSON{
		Timestamp:  snap.Now.UTC().Format(time.RFC3339),
		Interrupts: buildInterrupts(snap),
	}, "", "  ")
	return data
}
