// Package display drives a 128x64 monochrome graphics LCD (EA DOGM128,
// ST7565R controller). Drawing happens in an in-memory framebuffer; Show
// transfers it to the controller.
package display

// Display is the display capability surface used by the LCD commands.
type Display interface {
	// Init opens the controller and resets the framebuffer.
	Init() error

	Line(x1, y1, x2, y2 int)
	Rect(x1, y1, x2, y2 int, fill bool)
	Circle(x, y, r int, fill bool)
	Ellipse(x, y, rx, ry int, fill bool)
	Dot(x, y int)

	// Clear blanks the framebuffer.
	Clear()

	// Show writes the framebuffer to the controller.
	Show() error

	// Invert flips every framebuffer pixel.
	Invert()

	// Backlight sets the backlight brightness in percent.
	Backlight(percent int) error

	// Contrast sets the controller contrast (electronic volume).
	Contrast(value int) error

	// DisplayNormal selects normal (false) or reverse (true) controller output.
	DisplayNormal(reverse bool) error

	SelectFont(id int)
	WriteText(text string, x, y int)

	// SetPenColor selects 0 (clear pixels) or 1 (set pixels) for drawing.
	SetPenColor(c int)

	Close() error
}

// Pins holds the controller wiring, as logical pin indices.
type Pins struct {
	DI  int // data/command select (A0)
	LED int // PWM backlight
	CS  int // SPI chip select (0 or 1)
}

// DefaultPins is the wiring of the reference board.
var DefaultPins = Pins{DI: 6, LED: 1, CS: 0}

// Limits of the numeric arguments accepted by the LCD commands.
const (
	MinBacklight = 0
	MaxBacklight = 100
	MinContrast  = 5
	MaxContrast  = 25
	MaxFontID    = 33
)
