package gpio

import (
	"fmt"
	"sync"
)

// FakePins is an in-memory pin layer. Written values round-trip through
// Read; pins never written read as pin%2.
// Safe for concurrent use.
type FakePins struct {
	mu sync.Mutex

	values  map[int]int
	modes   map[int]Direction
	pulls   map[int]Pull
	watches map[int]fakeWatch

	// Reads counts calls to Read per pin.
	Reads map[int]int

	// Writes records every (pin, value) pair passed to Write.
	Writes [][2]int

	// Err, if set, is returned by every operation.
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

type fakeWatch struct {
	edge    Edge
	handler func()
}

// NewFakePins creates an empty FakePins.
func NewFakePins() *FakePins {
	return &FakePins{
		values:  make(map[int]int),
		modes:   make(map[int]Direction),
		pulls:   make(map[int]Pull),
		watches: make(map[int]fakeWatch),
		Reads:   make(map[int]int),
	}
}

func (f *FakePins) check(pin int) error {
	if f.Err != nil {
		return f.Err
	}
	if !Valid(pin) {
		return fmt.Errorf("pin %d out of range", pin)
	}
	return nil
}

// Read returns the last written value, or pin%2.
func (f *FakePins) Read(pin int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads[pin]++
	if err := f.check(pin); err != nil {
		return 0, err
	}
	if v, ok := f.values[pin]; ok {
		return v, nil
	}
	return pin % 2, nil
}

// Write stores value for pin.
func (f *FakePins) Write(pin, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(pin); err != nil {
		return err
	}
	f.values[pin] = value
	f.Writes = append(f.Writes, [2]int{pin, value})
	return nil
}

// SetMode records the direction of pin.
func (f *FakePins) SetMode(pin int, dir Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(pin); err != nil {
		return err
	}
	f.modes[pin] = dir
	return nil
}

// SetPull records the pull mode of pin.
func (f *FakePins) SetPull(pin int, pull Pull) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(pin); err != nil {
		return err
	}
	f.pulls[pin] = pull
	return nil
}

// Watch registers handler for pin; Trigger invokes it.
func (f *FakePins) Watch(pin int, edge Edge, handler func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(pin); err != nil {
		return err
	}
	f.watches[pin] = fakeWatch{edge: edge, handler: handler}
	return nil
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Mode returns the recorded direction of pin.
func (f *FakePins) Mode(pin int) (Direction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.modes[pin]
	return d, ok
}

// PullMode returns the recorded pull mode of pin.
func (f *FakePins) PullMode(pin int) (Pull, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pulls[pin]
	return p, ok
}

// Watched returns the edge registered on pin.
func (f *FakePins) Watched(pin int) (Edge, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[pin]
	return w.edge, ok
}

// ReadCount returns how many times Read was called for pin.
func (f *FakePins) ReadCount(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Reads[pin]
}

// Trigger simulates an edge on pin. It reports false if nothing watches pin.
// The handler runs on the caller's goroutine.
func (f *FakePins) Trigger(pin int) bool {
	f.mu.Lock()
	w, ok := f.watches[pin]
	f.mu.Unlock()
	if !ok {
		return false
	}
	w.handler()
	return true
}
