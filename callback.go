package mal

import "github.com/brackeen/mal/internal/registry"

// deliverFinished looks up id in the process-wide callback registry
// and, if it still resolves to a live Player with a callback set,
// invokes that callback. Run from a Context's delivery goroutine
// (never the render path), so a slow user callback cannot stall
// playback (a panic in it is not recovered) — and a player freed
// between the render path queuing
// the event and this running is simply a registry miss, not a crash
// (SPEC_FULL.md §9, testable property 8).
func deliverFinished(id uint64) {
	target, ok := registry.Lookup(id)
	if !ok {
		return
	}
	p, ok := target.(*Player)
	if !ok {
		return
	}

	p.mu.Lock()
	// The ID may have been retired and reassigned to a new callback
	// between send and delivery; only fire if it still matches.
	fn := p.finishedFunc
	stillCurrent := p.finishedID == id
	p.mu.Unlock()

	if stillCurrent && fn != nil {
		fn(p)
	}
}
