// Package gpio provides pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
//
// Pins are addressed by their logical index in [0,NumPins), the numbering
// clients use on the socket. PinMap translates an index to its BCM line.
package gpio

import "fmt"

// NumPins is the number of pins clients may address.
const NumPins = 16

// Direction is the pin direction.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "OUT"
	}
	return "IN"
}

// Pull is the internal resistor configuration of an input pin.
type Pull int

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return "none"
}

// ParsePull converts a configuration string ("none", "up", "down").
func ParsePull(s string) (Pull, error) {
	switch s {
	case "none":
		return PullNone, nil
	case "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	}
	return PullNone, fmt.Errorf("unknown pull mode %q", s)
}

// Edge selects which transition triggers a watch.
type Edge int

const (
	EdgeFalling Edge = iota
	EdgeRising
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeBoth:
		return "both"
	}
	return "falling"
}

// ParseEdge converts a configuration string ("falling", "rising", "both").
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "falling":
		return EdgeFalling, nil
	case "rising":
		return EdgeRising, nil
	case "both":
		return EdgeBoth, nil
	}
	return EdgeFalling, fmt.Errorf("unknown edge type %q", s)
}

// Pins is the pin capability surface.
type Pins interface {
	// Read returns the current level (0 or 1) of pin.
	Read(pin int) (int, error)

	// Write drives pin to value (0 or 1).
	Write(pin, value int) error

	// SetMode sets the pin direction.
	SetMode(pin int, dir Direction) error

	// SetPull sets the pull resistor of an input pin.
	SetPull(pin int, pull Pull) error

	// Watch calls handler on every edge of the given type on pin.
	// The handler runs on a goroutine owned by the implementation.
	Watch(pin int, edge Edge, handler func()) error

	// Close releases GPIO resources.
	Close() error
}

// PinInfo describes one addressable pin.
type PinInfo struct {
	Index int
	BCM   int
	Name  string
}

// PinMap maps logical pin indices to BCM line offsets (Raspberry Pi header).
var PinMap = [NumPins]PinInfo{
	{0, 17, "GPIO0"},
	{1, 18, "GPIO1"},
	{2, 27, "GPIO2"},
	{3, 22, "GPIO3"},
	{4, 23, "GPIO4"},
	{5, 24, "GPIO5"},
	{6, 25, "GPIO6"},
	{7, 4, "GPIO7"},
	{8, 2, "SDA"},
	{9, 3, "SCL"},
	{10, 8, "CE0"},
	{11, 7, "CE1"},
	{12, 10, "MOSI"},
	{13, 9, "MISO"},
	{14, 11, "SCLK"},
	{15, 14, "TxD"},
}

// Valid reports whether pin is an addressable pin index.
func Valid(pin int) bool {
	return pin >= 0 && pin < NumPins
}

// BCM returns the BCM line offset for pin, or -1 if pin is not valid.
func BCM(pin int) int {
	if !Valid(pin) {
		return -1
	}
	return PinMap[pin].BCM
}
