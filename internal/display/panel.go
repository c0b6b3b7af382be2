package display

import (
	"fmt"
	"image/color"
	"math"

	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
)

// Controller moves framebuffer contents and settings to the hardware.
type Controller interface {
	Open() error
	// Flush writes the framebuffer pages (Width bytes each, page 0 first).
	Flush(pages [][]byte) error
	SetBacklight(percent int) error
	SetContrast(value int) error
	SetReverse(reverse bool) error
	Close() error
}

// Panel implements Display on a Framebuffer and a Controller.
type Panel struct {
	fb   Framebuffer
	ctrl Controller
	pen  color.RGBA
	font tinyfont.Fonter
}

// NewPanel creates a panel. Nothing touches the hardware until Init.
func NewPanel(ctrl Controller) *Panel {
	return &Panel{
		ctrl: ctrl,
		pen:  colorOn,
		font: FontByID(0).Face,
	}
}

// Framebuffer exposes the drawing surface.
func (p *Panel) Framebuffer() *Framebuffer {
	return &p.fb
}

// Init opens the controller, blanks the framebuffer and resets pen and font.
func (p *Panel) Init() error {
	if err := p.ctrl.Open(); err != nil {
		return fmt.Errorf("open controller: %w", err)
	}
	p.fb.Clear()
	p.pen = colorOn
	p.font = FontByID(0).Face
	return nil
}

func (p *Panel) Line(x1, y1, x2, y2 int) {
	tinydraw.Line(&p.fb, int16(x1), int16(y1), int16(x2), int16(y2), p.pen)
}

// Rect draws the rectangle spanned by two opposite corners. Corners far
// off the panel are pulled in to just outside it.
func (p *Panel) Rect(x1, y1, x2, y2 int, fill bool) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	x1, x2 = clamp(x1, -1, Width), clamp(x2, -1, Width)
	y1, y2 = clamp(y1, -1, Height), clamp(y2, -1, Height)
	w, h := int16(x2-x1+1), int16(y2-y1+1)
	if fill {
		tinydraw.FilledRectangle(&p.fb, int16(x1), int16(y1), w, h, p.pen)
		return
	}
	tinydraw.Rectangle(&p.fb, int16(x1), int16(y1), w, h, p.pen)
}

func (p *Panel) Circle(x, y, r int, fill bool) {
	p.Ellipse(x, y, r, r, fill)
}

// Ellipse draws an axis-aligned ellipse one panel row at a time, so the
// work is bounded by the panel height whatever the radii.
func (p *Panel) Ellipse(x, y, rx, ry int, fill bool) {
	if rx < 0 || ry < 0 {
		return
	}
	fx, fy, frx, fry := float64(x), float64(y), float64(rx), float64(ry)
	top := math.Max(fy-fry, 0)
	bottom := math.Min(fy+fry, Height-1)
	if top > Height-1 || bottom < 0 {
		return
	}
	for row := int(math.Ceil(top)); float64(row) <= bottom; row++ {
		dy := math.Abs(float64(row) - fy)
		outer := halfWidth(frx, fry, dy)
		if fill {
			p.hspan(fx-outer, fx+outer, row)
			continue
		}
		inner := halfWidth(frx, fry, dy+1)
		if inner >= outer {
			inner = outer - 1
		}
		p.hspan(fx-outer, fx-inner-1, row)
		p.hspan(fx+inner+1, fx+outer, row)
	}
}

// halfWidth is the rounded half width of the ellipse dy rows from its
// center, or -1 beyond the ellipse.
func halfWidth(rx, ry, dy float64) float64 {
	if dy > ry {
		return -1
	}
	if ry == 0 {
		return rx
	}
	k := dy / ry
	return math.Floor(rx*math.Sqrt(1-k*k) + 0.5)
}

// hspan sets the pixels of row between x1 and x2 inclusive that lie on
// the panel.
func (p *Panel) hspan(x1, x2 float64, row int) {
	if x2 < x1 {
		return
	}
	x1 = math.Min(math.Max(x1, 0), Width)
	x2 = math.Min(math.Max(x2, -1), Width-1)
	for i := int(x1); i <= int(x2); i++ {
		p.fb.SetPixel(int16(i), int16(row), p.pen)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *Panel) Dot(x, y int) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	p.fb.SetPixel(int16(x), int16(y), p.pen)
}

func (p *Panel) Clear() {
	p.fb.Clear()
}

func (p *Panel) Invert() {
	p.fb.Invert()
}

// Show flushes all pages to the controller.
func (p *Panel) Show() error {
	pages := make([][]byte, Pages)
	for i := range pages {
		pages[i] = p.fb.Page(i)
	}
	return p.ctrl.Flush(pages)
}

func (p *Panel) Backlight(percent int) error {
	return p.ctrl.SetBacklight(percent)
}

func (p *Panel) Contrast(value int) error {
	return p.ctrl.SetContrast(value)
}

func (p *Panel) DisplayNormal(reverse bool) error {
	return p.ctrl.SetReverse(reverse)
}

func (p *Panel) SelectFont(id int) {
	p.font = FontByID(id).Face
}

// WriteText renders text with its baseline at y.
func (p *Panel) WriteText(text string, x, y int) {
	tinyfont.WriteLine(&p.fb, p.font, int16(x), int16(y), text, p.pen)
}

func (p *Panel) SetPenColor(c int) {
	if c == 0 {
		p.pen = colorOff
		return
	}
	p.pen = colorOn
}

func (p *Panel) Close() error {
	return p.ctrl.Close()
}

// NopController accepts everything and drives no hardware.
type NopController struct{}

func (NopController) Open() error                { return nil }
func (NopController) Flush(pages [][]byte) error { return nil }
func (NopController) SetBacklight(int) error     { return nil }
func (NopController) SetContrast(int) error      { return nil }
func (NopController) SetReverse(bool) error      { return nil }
func (NopController) Close() error               { return nil }
