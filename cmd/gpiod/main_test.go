package main

import (
	"bufio"
	"errors"
	"flag"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/gpiod/internal/config"
	"github.com/sweeney/gpiod/internal/display"
	"github.com/sweeney/gpiod/internal/gpio"
	"github.com/sweeney/gpiod/internal/interrupt"
	"github.com/sweeney/gpiod/internal/mqtt"
	"github.com/sweeney/gpiod/internal/protocol"
	"github.com/sweeney/gpiod/internal/server"
	"github.com/sweeney/gpiod/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}

	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.Type != "" {
		t.Errorf("Type: got %q, want empty", info.Type)
	}
}

// --- parseArgs tests ---

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpiod.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, opts, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Socket != config.DefaultSocket {
		t.Errorf("Socket: got %q, want %q", cfg.Socket, config.DefaultSocket)
	}
	if cfg.LCD != display.DefaultPins {
		t.Errorf("LCD: got %+v, want %+v", cfg.LCD, display.DefaultPins)
	}
	if opts.verbose || opts.foreground || opts.mock {
		t.Errorf("expected all switches off, got %+v", opts)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg, opts, err := parseArgs([]string{
		"-d", "-v", "-mock",
		"-s", "/run/x.sock",
		"-a", "3", "-l", "4", "-c", "1",
		"-broker", "tcp://broker:1883",
		"-http", ":8080",
		"-idle-timeout", "30s",
		"-pidfile", "/run/gpiod.pid",
	}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.foreground || !opts.verbose || !opts.mock {
		t.Errorf("expected all switches on, got %+v", opts)
	}
	if cfg.Socket != "/run/x.sock" {
		t.Errorf("Socket: got %q", cfg.Socket)
	}
	if cfg.LCD != (display.Pins{DI: 3, LED: 4, CS: 1}) {
		t.Errorf("LCD: got %+v", cfg.LCD)
	}
	if cfg.Broker != "tcp://broker:1883" || cfg.HTTPAddr != ":8080" {
		t.Errorf("Broker/HTTP: got %q/%q", cfg.Broker, cfg.HTTPAddr)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout: got %v", cfg.IdleTimeout)
	}
	if cfg.PidFile != "/run/gpiod.pid" {
		t.Errorf("PidFile: got %q", cfg.PidFile)
	}
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
socket: /run/file.sock
lcd:
  di_pin: 2
  led_pin: 3
interrupt:
  - {pin: 5, type: rising, name: door, wait: 100, pud: up}
`)
	cfg, _, err := parseArgs([]string{"-i", path, "-a", "7"}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Socket != "/run/file.sock" {
		t.Errorf("Socket from file: got %q", cfg.Socket)
	}
	if cfg.LCD.DI != 7 {
		t.Errorf("DI: flag should win, got %d", cfg.LCD.DI)
	}
	if cfg.LCD.LED != 3 {
		t.Errorf("LED: file value should survive, got %d", cfg.LCD.LED)
	}
	if len(cfg.Interrupts) != 1 || cfg.Interrupts[0].Name != "door" {
		t.Errorf("Interrupts: got %+v", cfg.Interrupts)
	}
}

func TestParseArgsUnsetFlagsDoNotOverrideFile(t *testing.T) {
	path := writeConfig(t, "socket: /run/file.sock\n")
	cfg, _, err := parseArgs([]string{"-i", path}, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Socket != "/run/file.sock" {
		t.Errorf("Socket: got %q, want /run/file.sock", cfg.Socket)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"di out of range", []string{"-a", "16"}},
		{"led negative", []string{"-l", "-1"}},
		{"cs not 0 or 1", []string{"-c", "2"}},
		{"empty socket", []string{"-s", ""}},
		{"negative timeout", []string{"-idle-timeout", "-1s"}},
		{"unknown flag", []string{"-x"}},
		{"extra argument", []string{"stray"}},
		{"missing config", []string{"-i", "/nonexistent/gpiod.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseArgs(tt.args, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseArgsHelp(t *testing.T) {
	var out strings.Builder
	_, _, err := parseArgs([]string{"-h"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "-idle-timeout") {
		t.Errorf("usage should list flags, got %q", out.String())
	}
}

// --- helpers ---

func TestPidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpiod.pid")
	if err := writePidFile(path); err != nil {
		t.Fatalf("writePidFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != strconv.Itoa(os.Getpid()) {
		t.Errorf("pid file: got %q", data)
	}

	removePidFile(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected pid file removed")
	}
	removePidFile(path)
}

func TestInterruptHelpers(t *testing.T) {
	bindings := []interrupt.Binding{
		{Pin: 2, Name: "door"},
		{Pin: 3, Name: "bell"},
	}
	pins := interruptPins(bindings)
	if pins["door"] != 2 || pins["bell"] != 3 {
		t.Errorf("interruptPins: got %v", pins)
	}
	tracked := trackedInterrupts(bindings)
	if len(tracked) != 2 || tracked[1].Name != "bell" || tracked[1].Pin != 3 {
		t.Errorf("trackedInterrupts: got %+v", tracked)
	}
}

func TestOpenHardwareMock(t *testing.T) {
	pins, disp, err := openHardware(config.Defaults(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := pins.(*gpio.FakePins); !ok {
		t.Errorf("expected FakePins, got %T", pins)
	}
	if err := disp.Init(); err != nil {
		t.Errorf("mock display init: %v", err)
	}
}

// --- runLoop tests ---

type loopHarness struct {
	path    string
	tick    chan time.Time
	sig     chan os.Signal
	errCh   chan error
	tracker *status.Tracker
}

func startLoop(t *testing.T, pub mqtt.Publisher, conn mqtt.ConnectionStatus) *loopHarness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpiod.sock")
	ln, err := server.Listen(path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	h := &loopHarness{
		path:    path,
		tick:    make(chan time.Time),
		sig:     make(chan os.Signal, 1),
		errCh:   make(chan error, 1),
		tracker: status.NewTracker(time.Now(), status.Config{Socket: path}),
	}
	srv := server.New(protocol.NewDispatcher(gpio.NewFakePins(), display.NewFake()), 0)
	srv.Tracker = h.tracker

	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	go func() {
		h.errCh <- runLoop(srv, ln, pub, conn, h.tracker, func() time.Time { return at }, h.tick, h.sig)
	}()
	return h
}

func (h *loopHarness) stop(t *testing.T, s os.Signal) {
	t.Helper()
	h.sig <- s
	select {
	case err := <-h.errCh:
		if err != nil {
			t.Fatalf("runLoop returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not return after signal")
	}
}

func TestRunLoopServesClients(t *testing.T) {
	h := startLoop(t, nil, nil)

	conn, err := net.Dial("unix", h.path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.Write([]byte("READ 3\n"))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "OK - 1\n" {
		t.Errorf("got %q, want %q", line, "OK - 1\n")
	}

	h.stop(t, syscall.SIGINT)

	if _, err := os.Stat(h.path); !os.IsNotExist(err) {
		t.Error("expected socket file removed after shutdown")
	}
}

func TestRunLoopPublishesShutdown(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	h := startLoop(t, pub, pub)

	h.stop(t, syscall.SIGTERM)

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	ev := pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" || !ev.Retained {
		t.Errorf("unexpected shutdown event %+v", ev)
	}
	if !strings.Contains(string(ev.RawPayload), `"event":"SHUTDOWN"`) {
		t.Errorf("expected status payload, got %s", ev.RawPayload)
	}
}

func TestRunLoopShutdownWithoutBroker(t *testing.T) {
	h := startLoop(t, nil, nil)
	h.stop(t, syscall.SIGTERM)
}

func TestRunLoopSignalNames(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want string
	}{
		{syscall.SIGINT, "SIGINT"},
		{syscall.SIGTERM, "SIGTERM"},
		{syscall.SIGHUP, "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			pub := mqtt.NewFakePublisher()
			h := startLoop(t, pub, nil)
			h.stop(t, tt.sig)
			if len(pub.SystemEvents) != 1 || pub.SystemEvents[0].Reason != tt.want {
				t.Errorf("expected reason %s, got %+v", tt.want, pub.SystemEvents)
			}
		})
	}
}

func TestRunLoopShutdownPublishError(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.PublishSystemError = errors.New("broker down")
	h := startLoop(t, pub, pub)
	h.stop(t, syscall.SIGTERM)
}

func TestRunLoopTickRefreshesStatus(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.Connected = true
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "10.0.0.5")
	h := startLoop(t, pub, pub)

	h.tick <- time.Time{}
	// A second tick is only received after the first was handled.
	h.tick <- time.Time{}

	snap := h.tracker.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected after tick")
	}
	if snap.Network == nil || snap.Network.IP != "10.0.0.5" {
		t.Errorf("expected network refreshed, got %+v", snap.Network)
	}

	h.stop(t, syscall.SIGTERM)
}
