// Package interrupt binds edge-triggered pin watches to named notifications.
// The debounce logic has no dependency on hardware; time is always injected.
package interrupt

import (
	"fmt"

	"github.com/sweeney/gpiod/internal/gpio"
)

// MaxBindings is the number of bindings accepted from configuration.
const MaxBindings = 10

// Binding is one configured pin watch.
type Binding struct {
	Pin        int
	Edge       gpio.Edge
	Pull       gpio.Pull
	Name       string
	DebounceMs uint64
}

// Validate checks the binding fields that configuration cannot enforce.
func (b Binding) Validate() error {
	if !gpio.Valid(b.Pin) {
		return fmt.Errorf("pin %d out of range", b.Pin)
	}
	if b.Name == "" {
		return fmt.Errorf("empty name")
	}
	return nil
}

// Notifier receives the name of every live interrupt.
type Notifier interface {
	Notify(name string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(name string)

// Notify calls f(name).
func (f NotifierFunc) Notify(name string) { f(name) }

// Notifiers fans a notification out to several sinks in order.
type Notifiers []Notifier

// Notify delivers name to each sink.
func (ns Notifiers) Notify(name string) {
	for _, n := range ns {
		n.Notify(name)
	}
}

// Recorder observes gate decisions, e.g. for status reporting.
type Recorder interface {
	InterruptFired(index int)
	InterruptSuppressed(index int)
}
