//go:build !linux

package gpio

import "errors"

// RealPins is not available on non-Linux platforms.
type RealPins struct{}

// NewRealPins returns an error on non-Linux platforms.
func NewRealPins(chipName string) (*RealPins, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (r *RealPins) Read(pin int) (int, error)             { return 0, errors.New("gpio: not supported") }
func (r *RealPins) Write(pin, value int) error            { return errors.New("gpio: not supported") }
func (r *RealPins) SetMode(pin int, dir Direction) error  { return errors.New("gpio: not supported") }
func (r *RealPins) SetPull(pin int, pull Pull) error      { return errors.New("gpio: not supported") }
func (r *RealPins) Watch(pin int, e Edge, h func()) error { return errors.New("gpio: not supported") }

// Close is a no-op on non-Linux platforms.
func (r *RealPins) Close() error {
	return nil
}
