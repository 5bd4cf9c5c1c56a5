// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package broadphase implements the broad-phase contract spec §4.3
// describes and §1 marks as "deliberately out of scope" except for its
// move-list and pair-set surface: createContact/destroyContact and the
// ray/TOI casts only ever consume MoveEvents, PairEvents and the pair
// set, never the tree's internal structure. Tree below is a minimal,
// complete implementation of that contract (fattened-AABB proxies plus
// an O(movedÂ·n) sweep for new/lost pairs) grounded on the teacher's own
// fallback, collision.Broadphase (an explicitly-"naive" O(n^2) pairwise
// test keyed off Body.BoundingBox()), generalized with cp's proxy
// fattening margin (Space.collisionSlop) so small moves don't constantly
// re-trigger pair churn.
package broadphase

import (
	"sort"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// FatMargin is how far a proxy's AABB is grown past the shape's tight
// bounds before a move is considered to have escaped it, the same
// "increase the distance a little to account for moving objects" idea
// gazed-vu's broad.go half-bakes ad hoc with a flat 0.1 constant and cp
// formalizes as Space.collisionSlop.
const FatMargin = 0.1

// PairKey packs two shape ids into the order-independent uint64 key
// spec §4.3 specifies: (min(idA,idB)<<32) | max.
func PairKey(a, b idpool.Handle) uint64 {

	ia, ib := uint64(a.Index1), uint64(b.Index1)
	if ia > ib {
		ia, ib = ib, ia
	}
	return ia<<32 | ib
}

// Pair is an unordered shape pair as reported by PairEvents.
type Pair struct {
	ShapeA idpool.Handle
	ShapeB idpool.Handle
}

// proxy is one tracked shape.
type proxy struct {
	shapeId  idpool.Handle
	tight    math2d.AABB
	fat      math2d.AABB
	creation uint64 // monotonic creation order, for deterministic ordering (spec §5)
	alive    bool
}

// Tree is the broad-phase structure. Despite the name it is currently a
// flat proxy array rather than a hierarchical tree — sufficient to
// satisfy the move-list/pair-set contract the core actually depends on;
// swapping in a real dynamic AABB tree (as cp's BBTree does) would not
// change anything visible to the rest of the core, which is the point of
// treating it as an external collaborator.
type Tree struct {
	proxies    map[idpool.Handle]*proxy
	nextCreate uint64

	moved    []idpool.Handle // this step's moved shapes, in creation order
	movedSet map[idpool.Handle]bool

	pairSet map[uint64]Pair
}

// NewTree returns an empty broad-phase tree.
func NewTree() *Tree {

	return &Tree{
		proxies:  make(map[idpool.Handle]*proxy),
		movedSet: make(map[idpool.Handle]bool),
		pairSet:  make(map[uint64]Pair),
	}
}

// CreateProxy registers shapeId with initial tight bounds aabb and marks
// it moved (a newly created shape must be considered for pairing against
// everything already present).
func (t *Tree) CreateProxy(shapeId idpool.Handle, aabb math2d.AABB) {

	p := &proxy{
		shapeId:  shapeId,
		tight:    aabb,
		fat:      aabb.Extend(FatMargin),
		creation: t.nextCreate,
		alive:    true,
	}
	t.nextCreate++
	t.proxies[shapeId] = p
	t.markMoved(shapeId)
}

// DestroyProxy removes shapeId. Any pairs involving it are left for the
// caller to discover via PairEvents' lostPairs on the next call, matching
// spec §4.4's destroyContact being driven off lost pairs.
func (t *Tree) DestroyProxy(shapeId idpool.Handle) {

	delete(t.proxies, shapeId)
	delete(t.movedSet, shapeId)
	for i, h := range t.moved {
		if h == shapeId {
			t.moved = append(t.moved[:i], t.moved[i+1:]...)
			break
		}
	}
}

// MoveProxy updates shapeId's tight bounds. If the new bounds escape the
// existing fat AABB, the fat AABB is re-fitted and the shape is recorded
// as moved.
func (t *Tree) MoveProxy(shapeId idpool.Handle, aabb math2d.AABB) {

	p, ok := t.proxies[shapeId]
	if !ok {
		return
	}
	p.tight = aabb
	if !p.fat.Contains(aabb) {
		p.fat = aabb.Extend(FatMargin)
		t.markMoved(shapeId)
	}
}

func (t *Tree) markMoved(shapeId idpool.Handle) {

	if t.movedSet[shapeId] {
		return
	}
	t.movedSet[shapeId] = true
	t.moved = append(t.moved, shapeId)
}

// MoveEvents returns the shape ids whose proxy moved this step, ordered
// by original shape creation (spec §4.3), and clears the move list.
func (t *Tree) MoveEvents() []idpool.Handle {

	out := make([]idpool.Handle, len(t.moved))
	copy(out, t.moved)
	sort.Slice(out, func(i, j int) bool {
		return t.proxies[out[i]].creation < t.proxies[out[j]].creation
	})
	t.moved = t.moved[:0]
	for k := range t.movedSet {
		delete(t.movedSet, k)
	}
	return out
}

// PairEvents recomputes fat-AABB overlaps restricted to moved shapes (a
// pair can only start or stop overlapping if at least one side moved) and
// returns the pairs that newly overlap and the ones that stopped, in
// deterministic order (keyed off the move list, per spec §4.3). PairSet
// is updated to reflect the new state as a side effect, the way
// Space.cachedArbiters is kept in lockstep with Space.arbiters in cp.
func (t *Tree) PairEvents(moved []idpool.Handle) (newPairs, lostPairs []Pair) {

	seen := make(map[uint64]bool)
	for _, a := range moved {
		pa, ok := t.proxies[a]
		if !ok {
			continue
		}
		for b, pb := range t.proxies {
			if b == a || !pb.alive {
				continue
			}
			key := PairKey(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true
			overlapping := pa.fat.Overlaps(pb.fat)
			_, existed := t.pairSet[key]
			if overlapping && !existed {
				pair := Pair{ShapeA: a, ShapeB: b}
				t.pairSet[key] = pair
				newPairs = append(newPairs, pair)
			} else if !overlapping && existed {
				lostPairs = append(lostPairs, t.pairSet[key])
				delete(t.pairSet, key)
			}
		}
	}

	// A destroyed proxy's pairs must still be reported lost even though
	// it can no longer appear in the moved/proxies scan above.
	for key, pair := range t.pairSet {
		_, aAlive := t.proxies[pair.ShapeA]
		_, bAlive := t.proxies[pair.ShapeB]
		if !aAlive || !bAlive {
			lostPairs = append(lostPairs, pair)
			delete(t.pairSet, key)
		}
	}

	sortPairs(newPairs)
	sortPairs(lostPairs)
	return newPairs, lostPairs
}

func sortPairs(pairs []Pair) {

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ShapeA.Index1 != pairs[j].ShapeA.Index1 {
			return pairs[i].ShapeA.Index1 < pairs[j].ShapeA.Index1
		}
		return pairs[i].ShapeB.Index1 < pairs[j].ShapeB.Index1
	})
}

// ContainsPair reports whether key is currently tracked, the pair-set
// fence spec §4.4 step 4 uses to guard against duplicate contact
// creation.
func (t *Tree) ContainsPair(key uint64) bool {

	_, ok := t.pairSet[key]
	return ok
}

// Query visits every live proxy whose fat AABB overlaps aabb, stopping
// early if visit returns false. Backs the overlapAabb API (spec §6).
func (t *Tree) Query(aabb math2d.AABB, visit func(idpool.Handle) bool) {

	for id, p := range t.proxies {
		if p.fat.Overlaps(aabb) {
			if !visit(id) {
				return
			}
		}
	}
}

// RayQuery visits every live proxy whose fat AABB the segment
// [from,to] might intersect; the shape-level ray test itself is the
// narrow-phase collaborator's job (spec §1 Scope).
func (t *Tree) RayQuery(from, to math2d.Vec2, visit func(idpool.Handle) bool) {

	seg := math2d.Union(math2d.AABB{Min: from, Max: from}, math2d.AABB{Min: to, Max: to})
	t.Query(seg, visit)
}
