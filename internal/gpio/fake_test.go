package gpio

import (
	"errors"
	"testing"
)

func TestFakePinsUnwrittenReadsParity(t *testing.T) {
	f := NewFakePins()

	for pin := 0; pin < NumPins; pin++ {
		v, err := f.Read(pin)
		if err != nil {
			t.Fatalf("pin %d: unexpected error: %v", pin, err)
		}
		if v != pin%2 {
			t.Errorf("pin %d: expected %d, got %d", pin, pin%2, v)
		}
	}
}

func TestFakePinsWriteRoundTrip(t *testing.T) {
	f := NewFakePins()

	if err := f.Write(3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := f.Read(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected 1, got %d", v)
	}

	if err := f.Write(3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ = f.Read(3)
	if v != 0 {
		t.Errorf("expected 0 after second write, got %d", v)
	}

	if len(f.Writes) != 2 {
		t.Errorf("expected 2 recorded writes, got %d", len(f.Writes))
	}
}

func TestFakePinsOutOfRange(t *testing.T) {
	f := NewFakePins()

	if _, err := f.Read(NumPins); err == nil {
		t.Error("expected error reading pin 16")
	}
	if err := f.Write(-1, 1); err == nil {
		t.Error("expected error writing pin -1")
	}
}

func TestFakePinsError(t *testing.T) {
	f := NewFakePins()
	f.Err = errors.New("simulated error")

	_, err := f.Read(1)
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakePinsModeAndPull(t *testing.T) {
	f := NewFakePins()

	if _, ok := f.Mode(5); ok {
		t.Error("mode should be unset initially")
	}
	f.SetMode(5, Out)
	f.SetPull(5, PullUp)

	if d, ok := f.Mode(5); !ok || d != Out {
		t.Errorf("expected OUT, got %v (set=%v)", d, ok)
	}
	if p, ok := f.PullMode(5); !ok || p != PullUp {
		t.Errorf("expected pull up, got %v (set=%v)", p, ok)
	}
}

func TestFakePinsWatchTrigger(t *testing.T) {
	f := NewFakePins()

	if f.Trigger(2) {
		t.Error("trigger on unwatched pin should report false")
	}

	calls := 0
	if err := f.Watch(2, EdgeBoth, func() { calls++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e, ok := f.Watched(2); !ok || e != EdgeBoth {
		t.Errorf("expected both-edge watch, got %v (set=%v)", e, ok)
	}

	f.Trigger(2)
	f.Trigger(2)
	if calls != 2 {
		t.Errorf("expected 2 handler calls, got %d", calls)
	}
}

func TestFakePinsClose(t *testing.T) {
	f := NewFakePins()
	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
