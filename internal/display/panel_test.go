package display

import (
	"errors"
	"testing"
	"time"
)

// recordingController captures controller traffic.
type recordingController struct {
	opened    int
	flushed   [][]byte
	backlight []int
	contrast  []int
	reverse   []bool
	openErr   error
}

func (c *recordingController) Open() error {
	if c.openErr != nil {
		return c.openErr
	}
	c.opened++
	return nil
}

func (c *recordingController) Flush(pages [][]byte) error {
	c.flushed = pages
	return nil
}

func (c *recordingController) SetBacklight(p int) error {
	c.backlight = append(c.backlight, p)
	return nil
}

func (c *recordingController) SetContrast(v int) error {
	c.contrast = append(c.contrast, v)
	return nil
}

func (c *recordingController) SetReverse(r bool) error {
	c.reverse = append(c.reverse, r)
	return nil
}

func (c *recordingController) Close() error { return nil }

func newTestPanel(t *testing.T) (*Panel, *recordingController) {
	t.Helper()
	ctrl := &recordingController{}
	p := NewPanel(ctrl)
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p, ctrl
}

func TestPanelInitOpensController(t *testing.T) {
	p, ctrl := newTestPanel(t)
	if ctrl.opened != 1 {
		t.Errorf("expected controller opened once, got %d", ctrl.opened)
	}
	if p.Framebuffer().Count() != 0 {
		t.Error("framebuffer should be blank after init")
	}
}

func TestPanelInitError(t *testing.T) {
	ctrl := &recordingController{openErr: errors.New("no spi")}
	p := NewPanel(ctrl)
	if err := p.Init(); err == nil {
		t.Error("expected init error")
	}
}

func TestPanelDot(t *testing.T) {
	p, _ := newTestPanel(t)
	p.Dot(3, 4)
	if !p.Framebuffer().Pixel(3, 4) {
		t.Error("expected dot at (3,4)")
	}
}

func TestPanelLine(t *testing.T) {
	p, _ := newTestPanel(t)
	p.Line(0, 0, 9, 0)
	fb := p.Framebuffer()
	for x := 0; x <= 9; x++ {
		if !fb.Pixel(x, 0) {
			t.Errorf("expected pixel (%d,0) set", x)
		}
	}
	if fb.Pixel(10, 0) {
		t.Error("line should stop at x=9")
	}
}

func TestPanelRect(t *testing.T) {
	p, _ := newTestPanel(t)
	fb := p.Framebuffer()

	p.Rect(5, 5, 2, 2, true) // corners given in reverse order
	if fb.Count() != 16 {
		t.Errorf("filled 4x4 rect: expected 16 pixels, got %d", fb.Count())
	}

	p.Clear()
	p.Rect(2, 2, 5, 5, false)
	if fb.Count() != 12 {
		t.Errorf("outlined 4x4 rect: expected 12 pixels, got %d", fb.Count())
	}
	if fb.Pixel(3, 3) {
		t.Error("outline should not fill the interior")
	}
}

func TestPanelCircle(t *testing.T) {
	p, _ := newTestPanel(t)
	fb := p.Framebuffer()

	p.Circle(30, 30, 5, false)
	if fb.Pixel(30, 30) {
		t.Error("outline circle should not set the center")
	}
	if !fb.Pixel(35, 30) || !fb.Pixel(25, 30) {
		t.Error("outline circle should pass through (cx±r, cy)")
	}

	p.Clear()
	p.Circle(30, 30, 5, true)
	if !fb.Pixel(30, 30) {
		t.Error("filled circle should set the center")
	}
}

func TestPanelEllipse(t *testing.T) {
	p, _ := newTestPanel(t)
	fb := p.Framebuffer()

	p.Ellipse(60, 30, 10, 5, false)
	for _, pt := range [][2]int{{70, 30}, {50, 30}, {60, 35}, {60, 25}} {
		if !fb.Pixel(pt[0], pt[1]) {
			t.Errorf("expected ellipse vertex at (%d,%d)", pt[0], pt[1])
		}
	}
	if fb.Pixel(60, 30) {
		t.Error("outline ellipse should not set the center")
	}

	// Symmetry about both axes.
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if fb.Pixel(x, y) && !fb.Pixel(120-x, y) {
				t.Fatalf("pixel (%d,%d) has no horizontal mirror", x, y)
			}
			if fb.Pixel(x, y) && !fb.Pixel(x, 60-y) {
				t.Fatalf("pixel (%d,%d) has no vertical mirror", x, y)
			}
		}
	}

	p.Clear()
	p.Ellipse(60, 30, 10, 5, true)
	if !fb.Pixel(60, 30) || !fb.Pixel(65, 31) {
		t.Error("filled ellipse should cover its interior")
	}
}

func TestPanelHugeShapesClipToPanel(t *testing.T) {
	p, _ := newTestPanel(t)
	fb := p.Framebuffer()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Ellipse(0, 0, 1000000, 1000000, true)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("filled ellipse with huge radii did not return")
	}
	if fb.Count() != Width*Height {
		t.Errorf("huge filled ellipse: expected full panel, got %d pixels", fb.Count())
	}

	p.Clear()
	p.Circle(64, 32, 1<<40, false)
	if fb.Count() != 0 {
		t.Errorf("huge outline circle lies off the panel, got %d pixels", fb.Count())
	}

	p.Clear()
	p.Rect(-100000, -100000, 100000, 100000, true)
	if fb.Count() != Width*Height {
		t.Errorf("huge filled rect: expected full panel, got %d pixels", fb.Count())
	}

	p.Clear()
	p.Rect(-100000, 10, 100000, 20, false)
	if !fb.Pixel(0, 10) || !fb.Pixel(Width-1, 20) || fb.Pixel(5, 15) {
		t.Error("wide outline rect should draw clipped top and bottom edges only")
	}
}

func TestPanelEllipseDegenerate(t *testing.T) {
	p, _ := newTestPanel(t)
	fb := p.Framebuffer()

	p.Ellipse(10, 10, 0, 0, false)
	if fb.Count() != 1 || !fb.Pixel(10, 10) {
		t.Errorf("zero radii should set one pixel, got %d", fb.Count())
	}

	p.Clear()
	p.Ellipse(10, 10, 4, 0, false)
	if fb.Count() != 9 {
		t.Errorf("flat ellipse should be a 9 pixel line, got %d", fb.Count())
	}

	p.Clear()
	p.Ellipse(10, 100, 4, 4, true)
	if fb.Count() != 0 {
		t.Errorf("ellipse below the panel should draw nothing, got %d", fb.Count())
	}
}

func TestPanelDotOffPanel(t *testing.T) {
	p, _ := newTestPanel(t)
	p.Dot(65536+5, 5)
	if p.Framebuffer().Count() != 0 {
		t.Error("dot far off the panel must not wrap onto it")
	}
}

func TestPanelPenColorClears(t *testing.T) {
	p, _ := newTestPanel(t)
	p.Rect(0, 0, 9, 9, true)

	p.SetPenColor(0)
	p.Dot(4, 4)
	if p.Framebuffer().Pixel(4, 4) {
		t.Error("pen color 0 should clear pixels")
	}

	p.SetPenColor(1)
	p.Dot(4, 4)
	if !p.Framebuffer().Pixel(4, 4) {
		t.Error("pen color 1 should set pixels")
	}
}

func TestPanelInvert(t *testing.T) {
	p, _ := newTestPanel(t)
	p.Invert()
	if p.Framebuffer().Count() != Width*Height {
		t.Errorf("expected all pixels set after invert, got %d", p.Framebuffer().Count())
	}
}

func TestPanelShowFlushesAllPages(t *testing.T) {
	p, ctrl := newTestPanel(t)
	p.Dot(0, 63)
	if err := p.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(ctrl.flushed) != Pages {
		t.Fatalf("expected %d pages, got %d", Pages, len(ctrl.flushed))
	}
	if ctrl.flushed[7][0] != 0x80 {
		t.Errorf("expected bottom-left pixel in page 7, got %#x", ctrl.flushed[7][0])
	}
}

func TestPanelControllerSettings(t *testing.T) {
	p, ctrl := newTestPanel(t)
	p.Backlight(50)
	p.Contrast(12)
	p.DisplayNormal(true)

	if len(ctrl.backlight) != 1 || ctrl.backlight[0] != 50 {
		t.Errorf("backlight: got %v", ctrl.backlight)
	}
	if len(ctrl.contrast) != 1 || ctrl.contrast[0] != 12 {
		t.Errorf("contrast: got %v", ctrl.contrast)
	}
	if len(ctrl.reverse) != 1 || !ctrl.reverse[0] {
		t.Errorf("reverse: got %v", ctrl.reverse)
	}
}

func TestPanelWriteText(t *testing.T) {
	p, _ := newTestPanel(t)
	p.SelectFont(8)
	p.WriteText("Hi", 0, 20)
	if p.Framebuffer().Count() == 0 {
		t.Error("expected text to set pixels")
	}
}

func TestFontByID(t *testing.T) {
	tests := []struct {
		id   int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 2},
		{9, 8},
		{22, 21},
		{29, 27},
		{33, 33},
		{99, 33},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := FontByID(tt.id).ID; got != tt.want {
			t.Errorf("FontByID(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestFontsOrderedAndPopulated(t *testing.T) {
	for i, f := range Fonts {
		if f.Face == nil {
			t.Errorf("font %d has no face", f.ID)
		}
		if i > 0 && Fonts[i-1].ID >= f.ID {
			t.Errorf("font table not ordered at index %d", i)
		}
		if f.ID > MaxFontID {
			t.Errorf("font id %d above MaxFontID", f.ID)
		}
	}
}
