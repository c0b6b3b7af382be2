// Command gpiod serves GPIO pins and a graphics LCD to clients over a Unix
// socket, and notifies the connected client of configured pin interrupts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/gpiod/internal/config"
	"github.com/sweeney/gpiod/internal/display"
	"github.com/sweeney/gpiod/internal/gpio"
	"github.com/sweeney/gpiod/internal/interrupt"
	"github.com/sweeney/gpiod/internal/mqtt"
	"github.com/sweeney/gpiod/internal/protocol"
	"github.com/sweeney/gpiod/internal/server"
	"github.com/sweeney/gpiod/internal/status"
	"github.com/sweeney/gpiod/internal/web"
)

// gpioChip is the character device holding the header pins.
const gpioChip = "gpiochip0"

// statusInterval is how often connectivity is refreshed in the status tracker.
const statusInterval = 10 * time.Second

// options holds the flags that are not part of the config file.
type options struct {
	foreground bool
	verbose    bool
	mock       bool
}

func main() {
	cfg, opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(2)
	}

	if err := run(cfg, opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseArgs builds the configuration from defaults, the optional config file
// and the command line, in that order of precedence.
func parseArgs(args []string, stderr io.Writer) (*config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("gpiod", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := config.Defaults()
	fs.BoolVar(&opts.foreground, "d", false, "Don't detach; run in the foreground")
	fs.BoolVar(&opts.verbose, "v", false, "Log every command and interrupt")
	socket := fs.String("s", defaults.Socket, "Unix socket path")
	di := fs.Int("a", defaults.LCD.DI, "LCD DI (A0) pin")
	led := fs.Int("l", defaults.LCD.LED, "LCD backlight pin")
	cs := fs.Int("c", defaults.LCD.CS, "LCD SPI chip select (0 or 1)")
	cfgPath := fs.String("i", "", "Config file (YAML)")
	pidFile := fs.String("pidfile", "", "Write the process id to this file")
	httpAddr := fs.String("http", "", "HTTP status address (empty to disable)")
	broker := fs.String("broker", "", "MQTT broker for interrupt mirroring (empty to disable)")
	idle := fs.Duration("idle-timeout", 0, "Close a client idle for this long (0 to disable)")
	fs.BoolVar(&opts.mock, "mock", false, "Use in-memory pins and display")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := defaults
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath, defaults)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.Socket = *socket
		case "a":
			cfg.LCD.DI = *di
		case "l":
			cfg.LCD.LED = *led
		case "c":
			cfg.LCD.CS = *cs
		case "pidfile":
			cfg.PidFile = *pidFile
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "broker":
			cfg.Broker = *broker
		case "idle-timeout":
			cfg.IdleTimeout = *idle
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func run(cfg *config.Config, opts options) error {
	if !opts.foreground {
		log.Printf("detaching is left to the service manager; running in the foreground")
	}

	if cfg.PidFile != "" {
		if err := writePidFile(cfg.PidFile); err != nil {
			return err
		}
		defer removePidFile(cfg.PidFile)
	}

	pins, disp, err := openHardware(cfg, opts.mock)
	if err != nil {
		return err
	}
	defer pins.Close()
	defer disp.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Socket:        cfg.Socket,
		Broker:        cfg.Broker,
		HTTPPort:      cfg.HTTPAddr,
		IdleTimeoutMs: cfg.IdleTimeout.Milliseconds(),
		Mock:          opts.mock,
		LCDDI:         cfg.LCD.DI,
		LCDLED:        cfg.LCD.LED,
		LCDCS:         cfg.LCD.CS,
	})
	if ni := readNetworkInfo(); ni != nil {
		tracker.SetNetwork(ni)
	}

	srv := server.New(protocol.NewDispatcher(pins, disp), cfg.IdleTimeout)
	srv.Tracker = tracker
	srv.Verbose = opts.verbose

	sinks := interrupt.Notifiers{srv}

	// MQTT is optional; socket delivery never depends on it.
	var publisher *mqtt.RealPublisher
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker)
		defer publisher.Close()

		mirror := mqtt.NewMirror(publisher, interruptPins(cfg.Interrupts), time.Now)
		defer mirror.Close()
		sinks = append(sinks, mirror)
	}

	registry, err := interrupt.NewRegistry(cfg.Interrupts, pins, sinks, time.Now)
	if err != nil {
		return fmt.Errorf("interrupts: %w", err)
	}
	registry.Recorder = tracker
	registry.Verbose = opts.verbose
	tracker.SetInterrupts(trackedInterrupts(registry.Bindings()))
	active := registry.Register()

	ln, err := server.Listen(cfg.Socket)
	if err != nil {
		return err
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTPAddr != "" {
		hs := web.New(cfg.HTTPAddr, tracker)
		if addr, err := hs.Start(); err != nil {
			log.Printf("http status server disabled: %v", err)
		} else {
			defer hs.Shutdown(context.Background())
			log.Printf("http status server listening on %s", addr)
		}
	}

	log.Printf("started: socket=%s interrupts=%d/%d lcd=%+v idle-timeout=%v mock=%v",
		cfg.Socket, active, len(cfg.Interrupts), cfg.LCD, cfg.IdleTimeout, opts.mock)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var pub mqtt.Publisher
	var conn mqtt.ConnectionStatus
	if publisher != nil {
		pub, conn = publisher, publisher
	}
	return runLoop(srv, ln, pub, conn, tracker, time.Now, ticker.C, sigCh)
}

// runLoop serves the socket until a signal arrives or the listener fails.
// publisher and mqttStatus may be nil.
func runLoop(srv *server.Server, ln net.Listener, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx, ln)
	}()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
			if err := <-serveErr; err != nil {
				log.Printf("server: %v", err)
			}

			if publisher == nil {
				return nil
			}
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case err := <-serveErr:
			return err

		case <-tick:
			if tracker == nil {
				continue
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			if ni := readNetworkInfo(); ni != nil {
				tracker.SetNetwork(ni)
			}
		}
	}
}

// openHardware returns the pin layer and display for the given mode. The
// display controller is not touched until the first LCD command.
func openHardware(cfg *config.Config, mock bool) (gpio.Pins, display.Display, error) {
	if mock {
		return gpio.NewFakePins(), display.NewPanel(display.NopController{}), nil
	}
	pins, err := gpio.NewRealPins(gpioChip)
	if err != nil {
		return nil, nil, fmt.Errorf("init gpio: %w", err)
	}
	return pins, display.NewPanel(display.NewDOGM(cfg.LCD)), nil
}

func interruptPins(bindings []interrupt.Binding) map[string]int {
	m := make(map[string]int, len(bindings))
	for _, b := range bindings {
		m[b.Name] = b.Pin
	}
	return m
}

func trackedInterrupts(bindings []interrupt.Binding) []status.Interrupt {
	out := make([]status.Interrupt, len(bindings))
	for i, b := range bindings {
		out[i] = status.Interrupt{Name: b.Name, Pin: b.Pin}
	}
	return out
}

func writePidFile(path string) error {
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

func removePidFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove pid file: %v", err)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
