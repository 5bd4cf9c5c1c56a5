// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package idpool implements generational handle allocation (spec §4.1,
// C1 Identity & Id Pools): a free-list of small integer ids, each carrying
// a generation counter so stale handles are detectable instead of being
// silently reused as if they still named the original entity.
package idpool

// Handle is an opaque generational reference. Index1 is the 1-based slot
// index (0 means null); Generation must match the live slot's generation
// for the handle to be considered valid. World is a small tag so handles
// from different worlds are never confused with each other even if their
// indices collide.
type Handle struct {
	Index1     uint32
	World      uint16
	Generation uint16
}

// Null is the zero-valued, always-invalid handle.
var Null = Handle{}

// IsNull returns true for the zero handle.
func (h Handle) IsNull() bool {

	return h.Index1 == 0
}

// Index returns the 0-based slot index for a non-null handle.
func (h Handle) Index() int {

	return int(h.Index1) - 1
}

// slot is the bookkeeping record kept per id: generation bumps every time
// the slot is freed and reused, and freeNext threads the free list.
type slot struct {
	generation uint16
	alive      bool
	freeNext   int32 // -1 terminator
}

// Pool allocates and frees small integer ids with generation tracking.
// It reuses the smallest freed id before appending a new one, matching
// the spec's "reuses the smallest freed id; else appends" (§4.1).
type Pool struct {
	world    uint16
	slots    []slot
	freeHead int32 // -1 if empty
}

// New creates an empty Pool tagged with world (an arbitrary small id
// distinguishing one World's handles from another's).
func New(world uint16) *Pool {

	return &Pool{world: world, freeHead: -1}
}

// Alloc returns a fresh Handle: either the smallest freed slot (with its
// generation bumped) or a newly appended one.
func (p *Pool) Alloc() Handle {

	if p.freeHead >= 0 {
		prevBest, best := int32(-1), p.freeHead
		for prev, idx := p.freeHead, p.slots[p.freeHead].freeNext; idx >= 0; prev, idx = idx, p.slots[idx].freeNext {
			if idx < best {
				prevBest, best = prev, idx
			}
		}
		s := &p.slots[best]
		if prevBest < 0 {
			p.freeHead = s.freeNext
		} else {
			p.slots[prevBest].freeNext = s.freeNext
		}
		s.alive = true
		return Handle{Index1: uint32(best) + 1, World: p.world, Generation: s.generation}
	}

	idx := len(p.slots)
	p.slots = append(p.slots, slot{generation: 0, alive: true, freeNext: -1})
	return Handle{Index1: uint32(idx) + 1, World: p.world, Generation: 0}
}

// Free releases h's slot for reuse, bumping its generation so any copy of
// h still in circulation becomes detectably stale. Freeing an already-free
// or out-of-range handle is a no-op.
func (p *Pool) Free(h Handle) {

	idx := h.Index()
	if idx < 0 || idx >= len(p.slots) {
		return
	}
	s := &p.slots[idx]
	if !s.alive || s.generation != h.Generation {
		return
	}
	s.alive = false
	s.generation++
	s.freeNext = p.freeHead
	p.freeHead = int32(idx)
}

// Valid reports whether h currently names a live slot in this pool: the
// index is in range, the slot is alive, the generation matches, and (if
// World was set at New) the world tag matches.
func (p *Pool) Valid(h Handle) bool {

	if h.IsNull() || h.World != p.world {
		return false
	}
	idx := h.Index()
	if idx < 0 || idx >= len(p.slots) {
		return false
	}
	s := &p.slots[idx]
	return s.alive && s.generation == h.Generation
}

// Count returns the number of currently allocated (live) ids.
func (p *Pool) Count() int {

	n := 0
	for i := range p.slots {
		if p.slots[i].alive {
			n++
		}
	}
	return n
}

// Capacity returns the total number of slots ever allocated, live or
// freed; useful for sizing dense parallel arrays indexed by Handle.Index().
func (p *Pool) Capacity() int {

	return len(p.slots)
}
