package mqtt

import (
	"log"
	"sync"
	"time"
)

// mirrorQueue bounds the interrupts waiting to be published.
const mirrorQueue = 64

// Mirror forwards interrupt notifications to a Publisher on its own
// goroutine, so a slow or absent broker never delays socket delivery.
// It implements interrupt.Notifier.
type Mirror struct {
	pub  Publisher
	pins map[string]int
	now  func() time.Time

	mu     sync.Mutex
	closed bool
	events chan InterruptEvent
	done   chan struct{}
}

// NewMirror starts a Mirror. pins maps interrupt names to their pin.
func NewMirror(pub Publisher, pins map[string]int, now func() time.Time) *Mirror {
	m := &Mirror{
		pub:    pub,
		pins:   pins,
		now:    now,
		events: make(chan InterruptEvent, mirrorQueue),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Mirror) run() {
	defer close(m.done)
	for e := range m.events {
		if err := m.pub.PublishInterrupt(e); err != nil {
			log.Printf("mqtt: publish interrupt %s: %v", e.Name, err)
		}
	}
}

// Notify queues name for publishing. It never blocks; when the queue is
// full the notification is dropped.
func (m *Mirror) Notify(name string) {
	e := InterruptEvent{Timestamp: m.now(), Name: name, Pin: m.pins[name]}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.events <- e:
	default:
		log.Printf("mqtt: queue full, dropped interrupt %s", name)
	}
}

// Close stops accepting notifications and waits until the queued ones
// have been handed to the publisher.
func (m *Mirror) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	m.mu.Unlock()
	<-m.done
}
