package voicepool

import "testing"

func TestAcquireLowestFreeIndex(t *testing.T) {
	p := New(4, 0)
	for i := 0; i < 4; i++ {
		idx, ok := p.Acquire()
		if !ok || idx != i {
			t.Fatalf("Acquire() = %d,%v; want %d,true", idx, ok, i)
		}
	}
	p.Release(1)
	idx, ok := p.Acquire()
	if !ok || idx != 1 {
		t.Fatalf("expected reuse of freed index 1, got %d,%v", idx, ok)
	}
}

func TestGrowsByIncrementWhenExhausted(t *testing.T) {
	p := New(8, 0)
	for i := 0; i < 8; i++ {
		if _, ok := p.Acquire(); !ok {
			t.Fatalf("unexpected exhaustion at slot %d", i)
		}
	}
	if p.Capacity() != 8 {
		t.Fatalf("capacity = %d, want 8", p.Capacity())
	}
	idx, ok := p.Acquire()
	if !ok || idx != 8 {
		t.Fatalf("Acquire() after exhaustion = %d,%v; want 8,true", idx, ok)
	}
	if p.Capacity() != 16 {
		t.Fatalf("capacity after growth = %d, want 16", p.Capacity())
	}
}

func TestRefusesToGrowPastMax(t *testing.T) {
	p := New(8, 8)
	for i := 0; i < 8; i++ {
		if _, ok := p.Acquire(); !ok {
			t.Fatalf("unexpected exhaustion at slot %d", i)
		}
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("expected Acquire to fail once the pool hits maxCapacity")
	}
}

func TestReleaseThenAcquireRoundTrip(t *testing.T) {
	p := New(1, 0)
	idx, _ := p.Acquire()
	p.Release(idx)
	if p.InUse() != 0 {
		t.Fatalf("InUse() = %d, want 0", p.InUse())
	}
	if _, ok := p.Acquire(); !ok {
		t.Fatal("expected Acquire to succeed after release")
	}
}

func TestReleaseUnknownIndexIsNoop(t *testing.T) {
	p := New(2, 0)
	p.Release(99) // must not panic
	if p.InUse() != 0 {
		t.Fatalf("InUse() = %d, want 0", p.InUse())
	}
}
