package interrupt

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/gpiod/internal/gpio"
)

// Registry owns the configured bindings and routes hardware edges through
// the debounce gate to a notifier.
type Registry struct {
	bindings []Binding
	gate     *Gate
	pins     gpio.Pins
	sink     Notifier
	now      func() time.Time

	// Recorder, if set, observes every gate decision.
	Recorder Recorder

	// Verbose logs every edge, including suppressed ones.
	Verbose bool
}

// NewRegistry creates a registry. At most MaxBindings bindings are accepted.
func NewRegistry(bindings []Binding, pins gpio.Pins, sink Notifier, now func() time.Time) (*Registry, error) {
	if len(bindings) > MaxBindings {
		return nil, fmt.Errorf("%d interrupt bindings configured, at most %d allowed", len(bindings), MaxBindings)
	}
	bs := make([]Binding, len(bindings))
	copy(bs, bindings)
	return &Registry{
		bindings: bs,
		gate:     NewGate(bs),
		pins:     pins,
		sink:     sink,
		now:      now,
	}, nil
}

// Bindings returns a copy of the configured bindings.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Register configures each binding's pin as an input with its pull mode and
// installs an edge watch. A binding that fails is logged and skipped; the
// number of active watches is returned.
func (r *Registry) Register() int {
	active := 0
	for i, b := range r.bindings {
		if err := r.register(i, b); err != nil {
			log.Printf("interrupt: %s on pin %d not registered: %v", b.Name, b.Pin, err)
			continue
		}
		log.Printf("interrupt: watching pin %d for %s edges as %q (wait %dms, pull %s)",
			b.Pin, b.Edge, b.Name, b.DebounceMs, b.Pull)
		active++
	}
	return active
}

func (r *Registry) register(index int, b Binding) error {
	if err := r.pins.SetMode(b.Pin, gpio.In); err != nil {
		return fmt.Errorf("set input: %w", err)
	}
	if err := r.pins.SetPull(b.Pin, b.Pull); err != nil {
		return fmt.Errorf("set pull: %w", err)
	}
	return r.pins.Watch(b.Pin, b.Edge, func() { r.Edge(index) })
}

// Edge handles one hardware edge on the binding at index.
// It returns whether the edge was delivered to the notifier.
func (r *Registry) Edge(index int) bool {
	if index < 0 || index >= len(r.bindings) {
		return false
	}
	b := r.bindings[index]
	nowMs := uint64(r.now().UnixMilli())

	if !r.gate.OnEdge(index, nowMs) {
		if r.Verbose {
			log.Printf("interrupt: %s suppressed (debounce %dms)", b.Name, b.DebounceMs)
		}
		if r.Recorder != nil {
			r.Recorder.InterruptSuppressed(index)
		}
		return false
	}

	if r.Verbose {
		log.Printf("interrupt: %s fired", b.Name)
	}
	if r.Recorder != nil {
		r.Recorder.InterruptFired(index)
	}
	if r.sink != nil {
		r.sink.Notify(b.Name)
	}
	return true
}
