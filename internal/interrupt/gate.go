package interrupt

import "sync"

// gateEntry tracks debounce state for one binding.
type gateEntry struct {
	debounceMs uint64
	lastMs     uint64
	fired      bool
}

// Gate decides whether an edge on a binding is live or must be absorbed.
// Edges arrive from hardware goroutines, so Gate is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	entries []gateEntry
}

// NewGate creates a gate for the given bindings, indexed in order.
func NewGate(bindings []Binding) *Gate {
	entries := make([]gateEntry, len(bindings))
	for i, b := range bindings {
		entries[i].debounceMs = b.DebounceMs
	}
	return &Gate{entries: entries}
}

// OnEdge reports whether the edge at nowMs fires. It fires iff the binding
// never fired before or nowMs - lastFired >= debounce; firing records nowMs.
// A clock that steps backwards is treated as no time elapsed.
func (g *Gate) OnEdge(index int, nowMs uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if index < 0 || index >= len(g.entries) {
		return false
	}
	e := &g.entries[index]

	if e.fired {
		var elapsed uint64
		if nowMs > e.lastMs {
			elapsed = nowMs - e.lastMs
		}
		if elapsed < e.debounceMs {
			return false
		}
	}

	e.fired = true
	e.lastMs = nowMs
	return true
}

// LastFired returns the time of the last live edge on a binding and
// whether it has fired at all.
func (g *Gate) LastFired(index int) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= len(g.entries) {
		return 0, false
	}
	return g.entries[index].lastMs, g.entries[index].fired
}
