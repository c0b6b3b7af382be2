// Package status provides a thread-safe status tracker for the gpiod daemon.
// It is read by the HTTP status page and the MQTT system events.
package status

import (
	"sync"
	"time"
)

// NetworkInfo contains network state as reported by pi-helper.
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
	Socket        string
	Broker        string
	HTTPPort      string
	IdleTimeoutMs int64
	Mock          bool
	LCDDI         int
	LCDLED        int
	LCDCS         int
}

// Session describes the connected client.
type Session struct {
	ID       string
	Since    time.Time
	Commands int
}

// Interrupt holds the counters of one configured interrupt binding.
type Interrupt struct {
	Name       string
	Pin        int
	Fired      int
	Suppressed int
	LastFired  time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	StartTime     time.Time
	Now           time.Time
	Session       *Session
	Sessions      int
	Commands      int
	Errors        int
	Interrupts    []Interrupt
	DisplayReady  bool
	MQTTConnected bool
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
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetInterrupts declares the configured bindings, in registry order.
// Only Name and Pin of each entry are used.
func (t *Tracker) SetInterrupts(irqs []Interrupt) {
	out := make([]Interrupt, len(irqs))
	for i, irq := range irqs {
		out[i] = Interrupt{Name: irq.Name, Pin: irq.Pin}
	}
	t.mu.Lock()
	t.snap.Interrupts = out
	t.mu.Unlock()
}

// InterruptFired counts a delivered interrupt for the binding at index.
func (t *Tracker) InterruptFired(index int) {
	at := t.now()
	t.mu.Lock()
	if index >= 0 && index < len(t.snap.Interrupts) {
		t.snap.Interrupts[index].Fired++
		t.snap.Interrupts[index].LastFired = at
	}
	t.mu.Unlock()
}

// InterruptSuppressed counts an edge absorbed by debouncing.
func (t *Tracker) InterruptSuppressed(index int) {
	t.mu.Lock()
	if index >= 0 && index < len(t.snap.Interrupts) {
		t.snap.Interrupts[index].Suppressed++
	}
	t.mu.Unlock()
}

// SessionOpened records a newly accepted client.
func (t *Tracker) SessionOpened(id string) {
	at := t.now()
	t.mu.Lock()
	t.snap.Session = &Session{ID: id, Since: at}
	t.snap.Sessions++
	t.mu.Unlock()
}

// SessionClosed clears the active client.
func (t *Tracker) SessionClosed() {
	t.mu.Lock()
	t.snap.Session = nil
	t.mu.Unlock()
}

// CommandHandled counts one dispatched command line.
func (t *Tracker) CommandHandled(failed bool) {
	t.mu.Lock()
	t.snap.Commands++
	if failed {
		t.snap.Errors++
	}
	if t.snap.Session != nil {
		s := *t.snap.Session
		s.Commands++
		t.snap.Session = &s
	}
	t.mu.Unlock()
}

// SetDisplayReady records whether the LCD has been initialized.
func (t *Tracker) SetDisplayReady(ready bool) {
	t.mu.Lock()
	t.snap.DisplayReady = ready
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
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
	s.Interrupts = append([]Interrupt(nil), t.snap.Interrupts...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
