//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// RealPins drives pins through the Linux GPIO character device.
// Lines are requested lazily on first use and kept until Close.
type RealPins struct {
	mu    sync.Mutex
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
	dirs  map[int]Direction
	pulls map[int]Pull
}

// NewRealPins opens the given chip (e.g. "gpiochip0").
func NewRealPins(chipName string) (*RealPins, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealPins{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
		dirs:  make(map[int]Direction),
		pulls: make(map[int]Pull),
	}, nil
}

// readRequest leaves direction and bias as they are, so reading a pin that
// serves another function (SPI, the LCD control lines) does not
// reconfigure it.
var readRequest = []gpiocdev.LineReqOption{gpiocdev.AsIs}

// line returns the requested line for pin, requesting it as-is if needed.
// The direction of such a line stays unknown until SetMode or Write.
// Caller must hold r.mu.
func (r *RealPins) line(pin int) (*gpiocdev.Line, error) {
	if l, ok := r.lines[pin]; ok {
		return l, nil
	}
	offset := BCM(pin)
	if offset < 0 {
		return nil, fmt.Errorf("pin %d out of range", pin)
	}
	l, err := r.chip.RequestLine(offset, readRequest...)
	if err != nil {
		return nil, fmt.Errorf("request pin %d (BCM %d): %w", pin, offset, err)
	}
	r.lines[pin] = l
	return l, nil
}

// Read returns the raw level of pin.
func (r *RealPins) Read(pin int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.line(pin)
	if err != nil {
		return 0, err
	}
	v, err := l.Value()
	if err != nil {
		return 0, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v, nil
}

// Write drives pin. A pin not configured as output is switched to output
// first.
func (r *RealPins) Write(pin, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lines[pin]
	if !ok {
		offset := BCM(pin)
		if offset < 0 {
			return fmt.Errorf("pin %d out of range", pin)
		}
		nl, err := r.chip.RequestLine(offset, gpiocdev.AsOutput(value))
		if err != nil {
			return fmt.Errorf("request pin %d (BCM %d): %w", pin, offset, err)
		}
		r.lines[pin] = nl
		r.dirs[pin] = Out
		return nil
	}
	if dir, ok := r.dirs[pin]; !ok || dir != Out {
		if err := l.Reconfigure(gpiocdev.AsOutput(value)); err != nil {
			return fmt.Errorf("set output on pin %d: %w", pin, err)
		}
		r.dirs[pin] = Out
		return nil
	}
	if err := l.SetValue(value); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// SetMode reconfigures the pin direction. Switching to output drives low.
func (r *RealPins) SetMode(pin int, dir Direction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.line(pin)
	if err != nil {
		return err
	}
	if dir == Out {
		err = l.Reconfigure(gpiocdev.AsOutput(0))
	} else {
		err = l.Reconfigure(gpiocdev.AsInput, biasOption(r.pulls[pin]))
	}
	if err != nil {
		return fmt.Errorf("set mode %s on pin %d: %w", dir, pin, err)
	}
	r.dirs[pin] = dir
	return nil
}

// SetPull sets the bias of pin.
func (r *RealPins) SetPull(pin int, pull Pull) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pulls[pin] = pull
	l, err := r.line(pin)
	if err != nil {
		return err
	}
	opts := pullConfig(pull, r.dirs, pin)
	if err := l.Reconfigure(opts...); err != nil {
		return fmt.Errorf("set pull %s on pin %d: %w", pull, pin, err)
	}
	if _, ok := r.dirs[pin]; !ok {
		r.dirs[pin] = In
	}
	return nil
}

// Watch re-requests pin as an input with edge detection. The kernel
// delivers events on a goroutine owned by gpiocdev.
func (r *RealPins) Watch(pin int, edge Edge, handler func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	offset := BCM(pin)
	if offset < 0 {
		return fmt.Errorf("pin %d out of range", pin)
	}
	if l, ok := r.lines[pin]; ok {
		l.Close()
		delete(r.lines, pin)
	}

	l, err := r.chip.RequestLine(offset,
		gpiocdev.AsInput,
		biasOption(r.pulls[pin]),
		edgeOption(edge),
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { handler() }),
	)
	if err != nil {
		return fmt.Errorf("watch pin %d (BCM %d): %w", pin, offset, err)
	}
	r.lines[pin] = l
	r.dirs[pin] = In
	return nil
}

// Close returns every line this process drove as output to input and
// releases the chip. Lines only read are released untouched.
func (r *RealPins) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for pin, l := range r.lines {
		if r.dirs[pin] == Out {
			if err := l.Reconfigure(gpiocdev.AsInput); err != nil {
				errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
			}
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	r.lines = make(map[int]*gpiocdev.Line)
	r.dirs = make(map[int]Direction)
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func biasOption(p Pull) gpiocdev.LineBias {
	switch p {
	case PullUp:
		return gpiocdev.WithPullUp
	case PullDown:
		return gpiocdev.WithPullDown
	}
	return gpiocdev.WithBiasDisabled
}

func edgeOption(e Edge) gpiocdev.LineEdge {
	switch e {
	case EdgeRising:
		return gpiocdev.WithRisingEdge
	case EdgeBoth:
		return gpiocdev.WithBothEdges
	}
	return gpiocdev.WithFallingEdge
}

// pullConfig returns the options that apply pull to pin. A bias needs a
// direction, so a line of unknown direction becomes an input.
func pullConfig(pull Pull, dirs map[int]Direction, pin int) []gpiocdev.LineConfigOption {
	opts := []gpiocdev.LineConfigOption{biasOption(pull)}
	if _, ok := dirs[pin]; !ok {
		opts = append(opts, gpiocdev.AsInput)
	}
	return opts
}
