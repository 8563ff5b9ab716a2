// Package registry is the process-wide finished-callback table. It
// exists so the render path can hand off a "player finished" event by
// value (a uint64 ID) instead of by pointer: the consumer side looks
// the ID up under a shared lock and silently drops the event if the
// player has since been freed or re-registered. This is the load
// bearing piece of SPEC_FULL.md §9's "dangling callbacks" design note
// and the direct translation of the C original's process-wide
// callback-ID-to-player map (mal_audio_coreaudio.h / mal_audio_opensl.h).
package registry

import (
	"sync"
	"sync/atomic"
)

var (
	mu      sync.Mutex
	entries = make(map[uint64]any)
	nextID  uint64
)

// NewID mints a new, process-wide unique, monotonically increasing ID.
// It never returns 0, so callers may use 0 as an "unregistered" sentinel.
func NewID() uint64 {
	return atomic.AddUint64(&nextID, 1)
}

// Register associates id with target, replacing any previous
// association for that id.
func Register(id uint64, target any) {
	if id == 0 {
		return
	}
	mu.Lock()
	entries[id] = target
	mu.Unlock()
}

// Unregister removes id's association, if any. It is idempotent.
func Unregister(id uint64) {
	if id == 0 {
		return
	}
	mu.Lock()
	delete(entries, id)
	mu.Unlock()
}

// Lookup returns the target registered for id, or nil, false if there
// is none (the player was freed or the slot was reassigned before the
// lookup ran). Callers must type-assert the result themselves; this
// package is deliberately untyped so it can be shared by any future
// callback-bearing entity without an import cycle back into the
// package defining Player.
func Lookup(id uint64) (any, bool) {
	if id == 0 {
		return nil, false
	}
	mu.Lock()
	target, ok := entries[id]
	mu.Unlock()
	return target, ok
}

// Len reports the number of live registrations. Exposed for tests that
// assert the registry does not leak entries across Free calls.
func Len() int {
	mu.Lock()
	defer mu.Unlock()
	return len(entries)
}
