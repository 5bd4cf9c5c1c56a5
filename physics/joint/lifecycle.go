// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joint

import (
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// Registry owns every live Joint, the way physics/contact.Registry owns
// every live Contact — the C5 analogue of C4 with no pair-set and no
// touching transition (spec §4.5: "Symmetric to C4 but joints have no
// pair-set and no touching transition").
type Registry struct {
	pool   *idpool.Pool
	joints map[idpool.Handle]*Joint
}

// NewRegistry creates an empty joint registry tagged for world 3 (0, 1
// and 2 are already used by the body pool, the shape pool and the
// contact pool respectively; see world.New and
// physics/contact.NewRegistry).
func NewRegistry() *Registry {

	return &Registry{pool: idpool.New(3), joints: make(map[idpool.Handle]*Joint)}
}

// Create allocates and registers a new Joint between bodyA and bodyB.
func (r *Registry) Create(t Type, bodyA, bodyB idpool.Handle, frameA, frameB Frame) *Joint {

	id := r.pool.Alloc()
	j := NewJoint(id, t, bodyA, bodyB, frameA, frameB)
	r.joints[id] = j
	return j
}

// Destroy removes and frees a joint. Destroying a non-existent or
// already-stale handle is a no-op, matching physics/contact.Registry's
// tolerance for double-destroy during world teardown.
func (r *Registry) Destroy(id idpool.Handle) {

	if _, ok := r.joints[id]; !ok {
		return
	}
	delete(r.joints, id)
	r.pool.Free(id)
}

// Get looks up a joint by id, returning nil if it is absent or stale.
func (r *Registry) Get(id idpool.Handle) *Joint {

	return r.joints[id]
}

// Len reports how many joints are currently registered.
func (r *Registry) Len() int {

	return len(r.joints)
}

// ForEachOnBody calls visit for every joint touching body (as either
// endpoint). Used by world.DestroyBody to find and destroy a body's
// joints without an intrusive list walk, the same way
// physics/contact's registry is walked by map iteration rather than by
// following Contact.NextEdgeA/B.
func (r *Registry) ForEachOnBody(body idpool.Handle, visit func(*Joint)) {

	for _, j := range r.joints {
		if j.BodyIdA == body || j.BodyIdB == body {
			visit(j)
		}
	}
}

// All returns every registered joint, in no particular order. Callers
// that need determinism (e.g. world.Step, before joints reach the
// constraint-graph colorer) sort by Id themselves, matching how
// physics/island.Builder sorts by Index1.
func (r *Registry) All() []*Joint {

	out := make([]*Joint, 0, len(r.joints))
	for _, j := range r.joints {
		out = append(out, j)
	}
	return out
}
