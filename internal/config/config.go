// Package config loads the gpiod configuration file.
//
// The file is YAML:
//
//	socket: /tmp/gpiod.sock
//	lcd:
//	  di_pin: 6
//	  led_pin: 1
//	  spi_cs: 0
//	interrupt:
//	  - {pin: 2, type: falling, name: doorbell, wait: 500, pud: up}
//	mqtt:
//	  broker: tcp://localhost:1883
//	http: ":8080"
//	idle_timeout: 5m
//	pidfile: /run/gpiod.pid
//
// Keys missing from the file keep their previous value. Malformed interrupt
// entries are skipped individually.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/gpiod/internal/display"
	"github.com/sweeney/gpiod/internal/gpio"
	"github.com/sweeney/gpiod/internal/interrupt"
)

// DefaultSocket is the socket path used when none is configured.
const DefaultSocket = "/tmp/gpiod.sock"

// Config is the validated daemon configuration.
type Config struct {
	Socket      string
	LCD         display.Pins
	Interrupts  []interrupt.Binding
	Broker      string
	HTTPAddr    string
	IdleTimeout time.Duration
	PidFile     string
}

// Defaults returns the configuration used without a config file.
func Defaults() *Config {
	return &Config{
		Socket: DefaultSocket,
		LCD:    display.DefaultPins,
	}
}

// fileConfig mirrors the YAML layout. Pointers distinguish missing keys.
type fileConfig struct {
	Socket *string `yaml:"socket"`
	LCD    *struct {
		DI  *int `yaml:"di_pin"`
		LED *int `yaml:"led_pin"`
		CS  *int `yaml:"spi_cs"`
	} `yaml:"lcd"`
	Interrupt yaml.Node `yaml:"interrupt"`
	MQTT      *struct {
		Broker *string `yaml:"broker"`
	} `yaml:"mqtt"`
	HTTP        *string `yaml:"http"`
	IdleTimeout *string `yaml:"idle_timeout"`
	PidFile     *string `yaml:"pidfile"`
}

type interruptEntry struct {
	Pin  *int    `yaml:"pin"`
	Type *string `yaml:"type"`
	Name *string `yaml:"name"`
	Wait *int    `yaml:"wait"`
	Pud  *string `yaml:"pud"`
}

// Load reads the YAML file at path and applies it on top of base.
// base is not modified.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := *base
	cfg.Interrupts = append([]interrupt.Binding(nil), base.Interrupts...)
	if err := Parse(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Parse applies YAML data to cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if fc.Socket != nil {
		cfg.Socket = *fc.Socket
	}
	if fc.LCD != nil {
		if fc.LCD.DI != nil {
			cfg.LCD.DI = *fc.LCD.DI
		}
		if fc.LCD.LED != nil {
			cfg.LCD.LED = *fc.LCD.LED
		}
		if fc.LCD.CS != nil {
			cfg.LCD.CS = *fc.LCD.CS
		}
	}
	if fc.MQTT != nil && fc.MQTT.Broker != nil {
		cfg.Broker = *fc.MQTT.Broker
	}
	if fc.HTTP != nil {
		cfg.HTTPAddr = *fc.HTTP
	}
	if fc.IdleTimeout != nil {
		d, err := time.ParseDuration(*fc.IdleTimeout)
		if err != nil {
			return fmt.Errorf("idle_timeout: %w", err)
		}
		cfg.IdleTimeout = d
	}
	if fc.PidFile != nil {
		cfg.PidFile = *fc.PidFile
	}

	if fc.Interrupt.Kind != 0 {
		bindings, err := parseInterrupts(&fc.Interrupt)
		if err != nil {
			return err
		}
		cfg.Interrupts = bindings
	}

	return cfg.Validate()
}

// parseInterrupts decodes the interrupt list. Only the first
// interrupt.MaxBindings entries are considered; a malformed entry is logged
// and skipped.
func parseInterrupts(node *yaml.Node) ([]interrupt.Binding, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("interrupt: line %d: expected a list", node.Line)
	}

	entries := node.Content
	if len(entries) > interrupt.MaxBindings {
		log.Printf("config: %d interrupts configured, using the first %d", len(entries), interrupt.MaxBindings)
		entries = entries[:interrupt.MaxBindings]
	}

	var out []interrupt.Binding
	for i, n := range entries {
		b, err := parseInterrupt(n)
		if err != nil {
			log.Printf("config: interrupt %d (line %d) skipped: %v", i, n.Line, err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func parseInterrupt(n *yaml.Node) (interrupt.Binding, error) {
	var e interruptEntry
	if err := n.Decode(&e); err != nil {
		return interrupt.Binding{}, err
	}
	if e.Pin == nil || e.Type == nil || e.Name == nil || e.Wait == nil || e.Pud == nil {
		return interrupt.Binding{}, errors.New("pin, type, name, wait and pud are required")
	}
	if *e.Wait < 0 {
		return interrupt.Binding{}, fmt.Errorf("wait %d is negative", *e.Wait)
	}
	edge, err := gpio.ParseEdge(*e.Type)
	if err != nil {
		return interrupt.Binding{}, err
	}
	pull, err := gpio.ParsePull(*e.Pud)
	if err != nil {
		return interrupt.Binding{}, err
	}

	b := interrupt.Binding{
		Pin:        *e.Pin,
		Edge:       edge,
		Pull:       pull,
		Name:       *e.Name,
		DebounceMs: uint64(*e.Wait),
	}
	if err := b.Validate(); err != nil {
		return interrupt.Binding{}, err
	}
	return b, nil
}

// Validate checks values that would make the daemon unusable.
func (c *Config) Validate() error {
	if c.Socket == "" {
		return errors.New("socket path is empty")
	}
	if err := ValidateLCD(c.LCD); err != nil {
		return err
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout %v is negative", c.IdleTimeout)
	}
	if len(c.Interrupts) > interrupt.MaxBindings {
		return fmt.Errorf("%d interrupts configured, at most %d allowed", len(c.Interrupts), interrupt.MaxBindings)
	}
	return nil
}

// ValidateLCD checks the display wiring.
func ValidateLCD(p display.Pins) error {
	if !gpio.Valid(p.DI) {
		return fmt.Errorf("lcd di_pin %d: only pins between 0 and %d allowed", p.DI, gpio.NumPins-1)
	}
	if !gpio.Valid(p.LED) {
		return fmt.Errorf("lcd led_pin %d: only pins between 0 and %d allowed", p.LED, gpio.NumPins-1)
	}
	if p.CS != 0 && p.CS != 1 {
		return fmt.Errorf("lcd spi_cs %d: only 0 or 1 allowed", p.CS)
	}
	return nil
}
