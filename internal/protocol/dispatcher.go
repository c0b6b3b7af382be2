package protocol

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sweeney/gpiod/internal/display"
	"github.com/sweeney/gpiod/internal/gpio"
)

// Dispatcher executes parsed commands against the pin and display
// capability surfaces. It owns the lazy display initialization state.
type Dispatcher struct {
	mu           sync.Mutex
	pins         gpio.Pins
	disp         display.Display
	displayReady bool
}

// NewDispatcher creates a Dispatcher. disp may be nil, in which case LCD
// drawing commands fail with an error response.
func NewDispatcher(pins gpio.Pins, disp display.Display) *Dispatcher {
	return &Dispatcher{pins: pins, disp: disp}
}

// DisplayReady reports whether the display has been initialized.
func (d *Dispatcher) DisplayReady() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.displayReady
}

// Dispatch parses and executes one request line and returns its response.
// It never panics on malformed input.
func (d *Dispatcher) Dispatch(line string) Response {
	cmd, err := Parse(line)
	if err != nil {
		return ErrorResponse(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.execute(cmd)
	if err != nil {
		return ErrorResponse(err)
	}
	return resp
}

func (d *Dispatcher) execute(cmd Command) (Response, error) {
	switch cmd.Verb {
	case VerbRead:
		return d.read(cmd.Args)
	case VerbWrite:
		return d.write(cmd.Args)
	case VerbMode:
		return d.mode(cmd.Args)
	case VerbReadAll:
		return d.readAll(cmd.Args)
	case VerbLCD:
		return d.lcd(cmd.Rest)
	case VerbInfo:
		if len(cmd.Args) != 0 {
			return Response{}, argErr(msgNoParameters)
		}
		return linesResponse(InfoText()), nil
	}
	return Response{}, unknownErr(msgUnknownCommand)
}

func (d *Dispatcher) read(args []string) (Response, error) {
	v, err := intArgs(args, 1, "parameter of type int expected")
	if err != nil {
		return Response{}, err
	}
	pin := v[0]
	if !gpio.Valid(pin) {
		return Response{}, rangeErr(msgUnknownPort)
	}
	bit, err := d.pins.Read(pin)
	if err != nil {
		return Response{}, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return OKPayload(fmt.Sprintf("%d", bit)), nil
}

func (d *Dispatcher) write(args []string) (Response, error) {
	v, err := intArgs(args, 2, "two parameters of type int expected")
	if err != nil {
		return Response{}, err
	}
	pin, value := v[0], v[1]
	if !gpio.Valid(pin) {
		return Response{}, rangeErr(msgUnknownPort)
	}
	if value != 0 && value != 1 {
		return Response{}, rangeErr(msgValue01)
	}
	if err := d.pins.Write(pin, value); err != nil {
		return Response{}, fmt.Errorf("write pin %d: %w", pin, err)
	}
	return OK(), nil
}

func (d *Dispatcher) mode(args []string) (Response, error) {
	const msg = "parameters of type int and string expected"
	if len(args) != 2 {
		return Response{}, argErr(msg)
	}
	v, ok := ints(args[:1])
	if !ok {
		return Response{}, argErr(msg)
	}
	pin := v[0]
	if !gpio.Valid(pin) {
		return Response{}, rangeErr(msgUnknownPort)
	}

	var dir gpio.Direction
	switch args[1] {
	case "IN":
		dir = gpio.In
	case "OUT":
		dir = gpio.Out
	default:
		return Response{}, rangeErr(msgModeInOut)
	}
	if err := d.pins.SetMode(pin, dir); err != nil {
		return Response{}, fmt.Errorf("mode pin %d: %w", pin, err)
	}
	return OK(), nil
}

// readAll reports every pin. A failed read aborts the whole response so
// the client never sees a partial table.
func (d *Dispatcher) readAll(args []string) (Response, error) {
	if len(args) != 0 {
		return Response{}, argErr(msgNoParameters)
	}
	lines := make([]string, 0, len(gpio.PinMap)+1)
	lines = append(lines, "OK")
	for _, p := range gpio.PinMap {
		bit, err := d.pins.Read(p.Index)
		if err != nil {
			return Response{}, fmt.Errorf("read pin %d: %w", p.Index, err)
		}
		lines = append(lines, okLine(fmt.Sprintf("%d %d %s %d", p.Index, p.BCM, p.Name, bit)))
	}
	return Response{Lines: lines}, nil
}

var errNoDisplay = errors.New("lcd not available")

// ensureDisplay initializes the display on first use. A failed
// initialization is retried by the next command that needs it.
func (d *Dispatcher) ensureDisplay() error {
	if d.displayReady {
		return nil
	}
	if d.disp == nil {
		return errNoDisplay
	}
	if err := d.disp.Init(); err != nil {
		return fmt.Errorf("lcd init: %w", err)
	}
	d.displayReady = true
	return nil
}

// linesResponse prefixes each line with "OK - ".
func linesResponse(lines []string) Response {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = okLine(l)
	}
	return Response{Lines: out}
}
