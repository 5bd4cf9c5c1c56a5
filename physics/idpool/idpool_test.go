package idpool

import "testing"

func TestAllocReusesSmallestFreed(t *testing.T) {

	p := New(1)
	a := p.Alloc()
	b := p.Alloc()
	c := p.Alloc()

	p.Free(b)
	d := p.Alloc()

	if d.Index() != b.Index() {
		t.Fatalf("expected reused index %d, got %d", b.Index(), d.Index())
	}
	if d.Generation == b.Generation {
		t.Fatalf("expected generation bump on reuse, got same generation %d", d.Generation)
	}
	if !p.Valid(a) || !p.Valid(c) || !p.Valid(d) {
		t.Fatalf("expected a, c, d to be valid")
	}
	if p.Valid(b) {
		t.Fatalf("expected stale handle b to be invalid after reuse")
	}
}

func TestCreateDestroyRoundTripLeavesCountUnchanged(t *testing.T) {

	p := New(0)
	before := p.Count()
	for i := 0; i < 50; i++ {
		h := p.Alloc()
		p.Free(h)
	}
	if p.Count() != before {
		t.Fatalf("expected count unchanged across create/destroy cycles, got %d want %d", p.Count(), before)
	}
}

func TestFreeIsIdempotent(t *testing.T) {

	p := New(0)
	h := p.Alloc()
	p.Free(h)
	p.Free(h) // must not double-bump generation or corrupt the free list
	next := p.Alloc()
	if next.Index() != h.Index() {
		t.Fatalf("expected double-free to not corrupt the free list")
	}
}

func TestStaleGenerationRejected(t *testing.T) {

	p := New(7)
	h := p.Alloc()
	p.Free(h)
	reused := p.Alloc()

	if p.Valid(h) {
		t.Fatalf("stale handle must be rejected")
	}
	if !p.Valid(reused) {
		t.Fatalf("reused handle must be valid")
	}
}

func TestNullHandle(t *testing.T) {

	if !Null.IsNull() {
		t.Fatalf("zero-value Handle must be null")
	}
	p := New(0)
	if p.Valid(Null) {
		t.Fatalf("null handle must never validate")
	}
}

func TestWorldTagDistinguishesPools(t *testing.T) {

	p1 := New(1)
	p2 := New(2)
	h := p1.Alloc()
	if p2.Valid(h) {
		t.Fatalf("handle from one world must not validate in another")
	}
}
