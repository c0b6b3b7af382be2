package display

import (
	"errors"
	"fmt"
)

// Fake records every call for test assertions.
type Fake struct {
	// Calls lists calls in order, e.g. "Line 0 0 10 10".
	Calls []string

	Inits      int
	Backlights []int
	Font       int

	// InitError, if set, is returned by Init.
	InitError error
}

var _ Display = (*Fake)(nil)

// NewFake creates a Fake display.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *Fake) Init() error {
	if f.InitError != nil {
		return f.InitError
	}
	f.Inits++
	f.record("Init")
	return nil
}

func (f *Fake) Line(x1, y1, x2, y2 int) { f.record("Line %d %d %d %d", x1, y1, x2, y2) }
func (f *Fake) Rect(x1, y1, x2, y2 int, fill bool) {
	f.record("Rect %d %d %d %d %v", x1, y1, x2, y2, fill)
}
func (f *Fake) Circle(x, y, r int, fill bool) { f.record("Circle %d %d %d %v", x, y, r, fill) }
func (f *Fake) Ellipse(x, y, rx, ry int, fill bool) {
	f.record("Ellipse %d %d %d %d %v", x, y, rx, ry, fill)
}
func (f *Fake) Dot(x, y int) { f.record("Dot %d %d", x, y) }
func (f *Fake) Clear()       { f.record("Clear") }
func (f *Fake) Show() error  { f.record("Show"); return nil }
func (f *Fake) Invert()      { f.record("Invert") }

func (f *Fake) Backlight(percent int) error {
	f.Backlights = append(f.Backlights, percent)
	f.record("Backlight %d", percent)
	return nil
}

func (f *Fake) Contrast(value int) error {
	f.record("Contrast %d", value)
	return nil
}

func (f *Fake) DisplayNormal(reverse bool) error {
	f.record("DisplayNormal %v", reverse)
	return nil
}

func (f *Fake) SelectFont(id int) {
	f.Font = id
	f.record("SelectFont %d", id)
}

func (f *Fake) WriteText(text string, x, y int) { f.record("WriteText %q %d %d", text, x, y) }
func (f *Fake) SetPenColor(c int)               { f.record("SetPenColor %d", c) }
func (f *Fake) Close() error                    { return nil }

// Reset clears recorded calls.
func (f *Fake) Reset() {
	f.Calls = nil
	f.Inits = 0
	f.Backlights = nil
	f.Font = 0
	f.InitError = nil
}

// ErrFakeInit is a convenience error for init failure tests.
var ErrFakeInit = errors.New("display: simulated init failure")
