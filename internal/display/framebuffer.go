package display

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Panel geometry.
const (
	Width  = 128
	Height = 64
	Pages  = Height / 8
)

var (
	colorOn  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorOff = color.RGBA{A: 0xff}
)

// Framebuffer is a 1bpp image laid out in controller page order: byte
// page*Width+x holds rows page*8..page*8+7 of column x, LSB on top.
type Framebuffer struct {
	buf [Width * Pages]byte
}

var _ drivers.Displayer = (*Framebuffer)(nil)

// Size returns the panel size in pixels.
func (f *Framebuffer) Size() (x, y int16) {
	return Width, Height
}

// SetPixel sets the pixel if c is not black and clears it otherwise.
// Coordinates outside the panel are ignored.
func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	off := int(y/8)*Width + int(x)
	mask := byte(1) << uint(y%8)
	if c.R|c.G|c.B != 0 {
		f.buf[off] |= mask
	} else {
		f.buf[off] &^= mask
	}
}

// Pixel reports whether the pixel at (x, y) is set.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return f.buf[(y/8)*Width+x]&(1<<uint(y%8)) != 0
}

// Display is a no-op; the panel flushes explicitly through its controller.
func (f *Framebuffer) Display() error {
	return nil
}

// Clear blanks every pixel.
func (f *Framebuffer) Clear() {
	f.buf = [Width * Pages]byte{}
}

// Invert flips every pixel.
func (f *Framebuffer) Invert() {
	for i := range f.buf {
		f.buf[i] = ^f.buf[i]
	}
}

// Page returns a copy of one controller page.
func (f *Framebuffer) Page(p int) []byte {
	out := make([]byte, Width)
	copy(out, f.buf[p*Width:(p+1)*Width])
	return out
}

// Count returns the number of set pixels.
func (f *Framebuffer) Count() int {
	n := 0
	for _, b := range f.buf {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}
