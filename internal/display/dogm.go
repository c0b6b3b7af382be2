package display

import (
	"fmt"
	"log"

	"github.com/sweeney/gpiod/internal/gpio"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7565R commands.
const (
	cmdDisplayOn     = 0xAF
	cmdStartLine     = 0x40
	cmdPageAddr      = 0xB0
	cmdColumnHigh    = 0x10
	cmdColumnLow     = 0x00
	cmdADCReverse    = 0xA1
	cmdNormal        = 0xA6
	cmdReverse       = 0xA7
	cmdBias19        = 0xA2
	cmdPowerControl  = 0x2F
	cmdBoosterRatio  = 0xF8
	cmdVoltageRatio  = 0x27
	cmdElectronicVol = 0x81
	cmdIndicatorOff  = 0xAC
	cmdCOMNormal     = 0xC0
)

const (
	defaultContrast = 0x16
	backlightFreq   = 1 * physic.KiloHertz
	spiFreq         = 1 * physic.MegaHertz
)

// DOGM talks to an EA DOGM128 over SPI using periph.io.
type DOGM struct {
	pins Pins

	port spi.PortCloser
	conn spi.Conn
	di   pgpio.PinIO
	led  pgpio.PinIO
}

// NewDOGM creates a controller for the given wiring. Open does the I/O.
func NewDOGM(pins Pins) *DOGM {
	return &DOGM{pins: pins}
}

// Open initializes the host drivers, the SPI port and the control lines,
// and sends the controller init sequence.
func (d *DOGM) Open() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	di, err := resolvePin(d.pins.DI)
	if err != nil {
		return fmt.Errorf("di pin: %w", err)
	}
	led, err := resolvePin(d.pins.LED)
	if err != nil {
		return fmt.Errorf("led pin: %w", err)
	}

	port, err := spireg.Open(fmt.Sprintf("SPI0.%d", d.pins.CS))
	if err != nil {
		return fmt.Errorf("open spi: %w", err)
	}
	return d.start(port, di, led)
}

var initSequence = []byte{
	cmdStartLine,
	cmdADCReverse,
	cmdCOMNormal,
	cmdNormal,
	cmdBias19,
	cmdPowerControl,
	cmdBoosterRatio, 0x00,
	cmdVoltageRatio,
	cmdElectronicVol, defaultContrast,
	cmdIndicatorOff, 0x00,
	cmdDisplayOn,
}

// start takes ownership of port and sends the init sequence. On any
// failure port is closed and the controller is left closed.
func (d *DOGM) start(port spi.PortCloser, di, led pgpio.PinIO) error {
	if err := d.Close(); err != nil {
		log.Printf("dogm: close previous port: %v", err)
	}
	conn, err := port.Connect(spiFreq, spi.Mode3, 8)
	if err != nil {
		port.Close()
		return fmt.Errorf("connect spi: %w", err)
	}
	d.port, d.conn, d.di, d.led = port, conn, di, led

	if err := d.command(initSequence...); err != nil {
		d.Close()
		d.di, d.led = nil, nil
		return fmt.Errorf("init controller: %w", err)
	}
	return nil
}

func resolvePin(pin int) (pgpio.PinIO, error) {
	bcm := gpio.BCM(pin)
	if bcm < 0 {
		return nil, fmt.Errorf("pin %d out of range", pin)
	}
	name := fmt.Sprintf("GPIO%d", bcm)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %d (%s) not found", pin, name)
	}
	return p, nil
}

func (d *DOGM) command(b ...byte) error {
	if d.conn == nil {
		return fmt.Errorf("controller not open")
	}
	if err := d.di.Out(pgpio.Low); err != nil {
		return fmt.Errorf("select command mode: %w", err)
	}
	if err := d.conn.Tx(b, nil); err != nil {
		return fmt.Errorf("spi command: %w", err)
	}
	return nil
}

func (d *DOGM) data(b []byte) error {
	if err := d.di.Out(pgpio.High); err != nil {
		return fmt.Errorf("select data mode: %w", err)
	}
	if err := d.conn.Tx(b, nil); err != nil {
		return fmt.Errorf("spi data: %w", err)
	}
	return nil
}

// Flush writes every page, each starting at column 0.
func (d *DOGM) Flush(pages [][]byte) error {
	for i, page := range pages {
		if err := d.command(cmdPageAddr|byte(i), cmdColumnHigh, cmdColumnLow); err != nil {
			return err
		}
		if err := d.data(page); err != nil {
			return err
		}
	}
	return nil
}

// SetBacklight drives the LED pin with a PWM duty cycle of percent.
func (d *DOGM) SetBacklight(percent int) error {
	if d.led == nil {
		return fmt.Errorf("controller not open")
	}
	duty := pgpio.Duty(int64(pgpio.DutyMax) * int64(percent) / 100)
	if err := d.led.PWM(duty, backlightFreq); err != nil {
		return fmt.Errorf("backlight pwm: %w", err)
	}
	return nil
}

func (d *DOGM) SetContrast(value int) error {
	return d.command(cmdElectronicVol, byte(value))
}

func (d *DOGM) SetReverse(reverse bool) error {
	if reverse {
		return d.command(cmdReverse)
	}
	return d.command(cmdNormal)
}

// Close releases the SPI port. The control lines stay as they are.
func (d *DOGM) Close() error {
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port, d.conn = nil, nil
	return err
}
