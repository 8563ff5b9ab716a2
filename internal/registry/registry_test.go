package registry

import "testing"

func TestRegisterLookupUnregister(t *testing.T) {
	id := NewID()
	if id == 0 {
		t.Fatal("NewID returned 0")
	}

	type player struct{ name string }
	p := &player{name: "voice-1"}

	Register(id, p)
	got, ok := Lookup(id)
	if !ok {
		t.Fatal("expected lookup to succeed")
	}
	if got.(*player) != p {
		t.Fatal("lookup returned a different target")
	}

	Unregister(id)
	if _, ok := Lookup(id); ok {
		t.Fatal("expected lookup to fail after unregister")
	}
}

func TestLookupMissUnknownID(t *testing.T) {
	if _, ok := Lookup(NewID()); ok {
		t.Fatal("expected lookup to fail for an ID that was never registered")
	}
}

func TestZeroIDIsAlwaysUnregistered(t *testing.T) {
	Register(0, "should not stick")
	if _, ok := Lookup(0); ok {
		t.Fatal("id 0 must never be registerable")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	id := NewID()
	Register(id, "x")
	Unregister(id)
	Unregister(id) // must not panic
}

func TestNewIDMonotonic(t *testing.T) {
	a := NewID()
	b := NewID()
	if b <= a {
		t.Fatalf("expected monotonically increasing IDs, got %d then %d", a, b)
	}
}
