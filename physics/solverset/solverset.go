// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solverset implements the lifecycle-state partition described in
// spec §4.2 (C2 Solver Sets): bodies, contacts and joints live in exactly
// one container at a time — the static set, the disabled set, the single
// shared awake set, or one dense set per sleeping island — and an
// entity's position is the pair (setIndex, localIndex).
//
// The swap-remove list here generalizes the pattern the teacher uses for
// its own flat collections (solver.Solver.RemoveEquation,
// Simulation.RemoveForceField): remove by copying the last element over
// the removed slot and shrinking by one, which is O(1) but requires
// fixing up whatever external index pointed at the old last element.
package solverset

// SetIndex identifies which SolverSet a (body|contact|joint) currently
// lives in. Values 3 and up name sleeping-island sets; the mapping from
// island id to SetIndex is owned by the island package.
type SetIndex int32

const (
	// StaticSet holds static bodies. Static bodies never sleep and never
	// carry contacts/joints directly in the constraint graph.
	StaticSet SetIndex = 0
	// DisabledSet holds non-touching contacts and explicitly disabled
	// bodies/joints.
	DisabledSet SetIndex = 1
	// AwakeSet holds every body, contact and joint currently being
	// simulated.
	AwakeSet SetIndex = 2
	// FirstSleepingSet is the first SetIndex used for a sleeping island's
	// dedicated set; island ids are offset by this constant.
	FirstSleepingSet SetIndex = 3
)

// IsSleeping reports whether idx names a sleeping-island set.
func (idx SetIndex) IsSleeping() bool {

	return idx >= FirstSleepingSet
}

// Array is a dense, swap-remove-on-delete slice of T, indexed by plain
// int (the "localIndex" of spec §3). It never allocates on Get/Set and
// only reallocates on Append past capacity, matching §5's "no hidden
// allocations inside constraint solving" (Append/RemoveSwap are only
// ever called from the lifecycle stages, never from inside a solver
// color).
type Array[T any] struct {
	items []T
}

// Len returns the number of elements.
func (a *Array[T]) Len() int {

	return len(a.items)
}

// Get returns a pointer to the element at localIndex for in-place
// mutation.
func (a *Array[T]) Get(localIndex int) *T {

	return &a.items[localIndex]
}

// Append adds v to the end and returns its new localIndex.
func (a *Array[T]) Append(v T) int {

	a.items = append(a.items, v)
	return len(a.items) - 1
}

// RemoveSwap removes the element at localIndex by moving the last element
// into its place (swap-remove), and reports the localIndex the last
// element used to have so the caller can retarget whatever
// back-reference (e.g. a Body's setIndex/localIndex, or a Contact's
// localIndex) pointed at it. ok is false if localIndex was already the
// last element (nothing needed to move).
func (a *Array[T]) RemoveSwap(localIndex int) (movedFrom int, ok bool) {

	last := len(a.items) - 1
	if localIndex < 0 || localIndex > last {
		return -1, false
	}
	if localIndex == last {
		var zero T
		a.items[last] = zero
		a.items = a.items[:last]
		return -1, false
	}
	a.items[localIndex] = a.items[last]
	var zero T
	a.items[last] = zero
	a.items = a.items[:last]
	return last, true
}

// Slice exposes the backing slice for iteration. Callers must not retain
// the slice across a subsequent Append/RemoveSwap.
func (a *Array[T]) Slice() []T {

	return a.items
}

// Reset empties the array while keeping its backing capacity, used when
// recycling a sleeping-island SolverSet back into the free list.
func (a *Array[T]) Reset() {

	a.items = a.items[:0]
}
