// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/broadphase"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

// Registry owns the persistent Contact records and drives the lifecycle
// spec §4.4 describes: createContact/destroyContact off the broad-phase's
// new/lost pair events, gated by the pair set and the shape filter so a
// pair already tracked (or that the filter rejects) never gets a second
// record, matching the narrow-phase's own pairSet fence in the teacher's
// design (there expressed implicitly by the single persistent
// simulation.bodies list; here made explicit as spec §4.4 step 4 asks).
// linearSlop mirrors physics/toi's unexported constant of the same
// value (0.005, the box2d-family B2_LINEAR_SLOP): the separation margin
// speculative-contact trimming compares against, spec §4.8 step 5.
const linearSlop = 0.005

type Registry struct {
	pool     *idpool.Pool
	contacts map[idpool.Handle]*Contact

	// byKey indexes contacts by their shape-pair key, the pair-set fence
	// SyncPairs uses to dedup (spec §4.4 step 4).
	byKey map[uint64]idpool.Handle

	callbacks Callbacks

	// enableSpeculative gates step 5's point-trimming (spec §4.8): when
	// false, a two-point manifold with a shallow (beyond 1.5*linearSlop)
	// point is trimmed to one, matching original_source/src/contact.c's
	// `world->enableSpeculative == false` test flag.
	enableSpeculative bool

	// BeginTouch / EndTouch are appended to during Refresh and drained by
	// the event queue (C12) once per step.
	BeginTouch []idpool.Handle
	EndTouch   []idpool.Handle
}

// NewRegistry returns an empty contact registry backed by its own id
// pool (world tag 2, by convention: 0 bodies, 1 shapes, 2 contacts, per
// spec §9's per-kind id-pool note), using the package's default
// friction/restitution callbacks and no pre-solve/custom-filter hooks,
// with speculative contacts enabled (config.DefaultWorldDef's default).
func NewRegistry() *Registry {

	return NewRegistryWithCallbacks(Callbacks{}, true)
}

// NewRegistryWithCallbacks is NewRegistry with the host-supplied
// callback bundle spec §6 names (frictionCallback, restitutionCallback,
// preSolveCallback, customFilterCallback) and the world's
// enableSpeculative tuning flag (spec §4.8 step 5).
func NewRegistryWithCallbacks(cb Callbacks, enableSpeculative bool) *Registry {

	return &Registry{
		pool:              idpool.New(2),
		contacts:          make(map[idpool.Handle]*Contact),
		byKey:             make(map[uint64]idpool.Handle),
		callbacks:         cb,
		enableSpeculative: enableSpeculative,
	}
}

// Get returns the contact for id, or nil if stale.
func (r *Registry) Get(id idpool.Handle) *Contact {

	return r.contacts[id]
}

// ShapeLookup resolves a shape id to its Shape record; callers provide it
// so Registry stays decoupled from whichever SolverSet currently holds
// shapes.
type ShapeLookup func(idpool.Handle) *object.Shape

// SyncPairs applies broad-phase new/lost pair events: new pairs become
// Contact records (after the category/mask/group filter and a
// sensor-vs-sensor exclusion — two sensors never need a contact, spec §6
// "Filtering" supplemented semantics), lost pairs destroy theirs. Returns
// the ids of contacts created and destroyed this step, the signal the
// island builder (C6) and the constraint graph (C7) consume to size
// their rebuild.
func (r *Registry) SyncPairs(newPairs, lostPairs []broadphase.Pair, shapes ShapeLookup) (created, destroyed []idpool.Handle) {

	for _, p := range lostPairs {
		key := broadphase.PairKey(p.ShapeA, p.ShapeB)
		if id, ok := r.byKey[key]; ok {
			destroyed = append(destroyed, id)
			delete(r.contacts, id)
			delete(r.byKey, key)
			r.pool.Free(id)
		}
	}

	for _, p := range newPairs {
		key := broadphase.PairKey(p.ShapeA, p.ShapeB)
		if _, exists := r.byKey[key]; exists {
			continue
		}
		a := shapes(p.ShapeA)
		b := shapes(p.ShapeB)
		if a == nil || b == nil {
			continue
		}
		if a.BodyId == b.BodyId {
			continue // a body never contacts its own shapes
		}
		if !a.Filter.ShouldCollide(b.Filter) {
			continue
		}
		if r.callbacks.CustomFilter != nil && !r.callbacks.CustomFilter(a.Id, b.Id) {
			continue
		}

		id := r.pool.Alloc()
		c := newContact(id, a, b, r.callbacks)
		r.contacts[id] = c
		r.byKey[key] = id
		created = append(created, id)
	}

	return created, destroyed
}

// BodyLookup resolves a body id to its Body record, the same pattern
// ShapeLookup establishes for shapes.
type BodyLookup func(idpool.Handle) *object.Body

// Refresh re-evaluates the manifold for every live contact whose shapes
// are given by the resolver, using Collide (the manifold-function
// registry) and updating touching transitions + BeginTouch/EndTouch,
// spec §4.8's "Narrow-Phase Per-Step Refresh". It returns the ContactSim
// records for touching, non-sensor contacts — what the constraint graph
// and solver consume this step. Each returned ContactSim carries the two
// bodies' current inverse mass properties and, per point, the previous
// step's warm-start impulses (matched by ManifoldPoint.Id, spec §4.8
// "Narrow-Phase Per-Step Refresh ... carries warm-start impulses forward
// by matching ids across steps").
func (r *Registry) Refresh(geom func(idpool.Handle) (object.Geometry, math2d.Transform2), shapes ShapeLookup, bodies BodyLookup) []*ContactSim {

	var sims []*ContactSim

	for id, c := range r.contacts {
		a := shapes(c.ShapeIdA)
		b := shapes(c.ShapeIdB)
		if a == nil || b == nil {
			continue
		}
		geomA, xfA := geom(c.ShapeIdA)
		geomB, xfB := geom(c.ShapeIdB)

		manifold, hit := Collide(geomA, xfA, geomB, xfB)

		// Step 3: friction/restitution/rollingResistance/tangentSpeed are
		// re-derived every refresh, not just at creation, in case the
		// shapes' materials were mutated since (original_source/src/
		// contact.c:538-551, comment "Keep these updated in case the
		// values on the shapes are modified").
		friction := r.callbacks.frictionOrDefault()
		restitution := r.callbacks.restitutionOrDefault()
		c.Friction = friction(a.Material.Friction, a.Material.UserMaterialId, b.Material.Friction, b.Material.UserMaterialId)
		c.Restitution = restitution(a.Material.Restitution, a.Material.UserMaterialId, b.Material.Restitution, b.Material.UserMaterialId)
		c.RollingResistance = maxF(a.Material.RollingResistance, b.Material.RollingResistance)
		c.TangentSpeed = a.Material.TangentSpeed + b.Material.TangentSpeed

		// touching is "any manifold point at all", not a separation
		// threshold: Collide only ever returns points within the
		// speculative margin in the first place, so a point's mere
		// presence already means the pair matters this step (box2d's own
		// rule, original_source/src/contact.c:556-557; see also the
		// Glossary's "speculative contact" entry).
		touching := hit && len(manifold.Points) > 0

		// Step 4: pre-solve callback, only when touching and the shape
		// opted in (FlagEnablePreSolveEvents). Picks the deepest point
		// (min separation) and may suppress the contact this step by
		// clearing its manifold (original_source/src/contact.c:559-586).
		if touching && r.callbacks.PreSolve != nil && c.Flags&FlagEnablePreSolveEvents != 0 {
			deepest := manifold.Points[0]
			for _, pt := range manifold.Points[1:] {
				if pt.Separation < deepest.Separation {
					deepest = pt
				}
			}
			if !r.callbacks.PreSolve(c.ShapeIdA, c.ShapeIdB, deepest.Point, manifold.Normal) {
				manifold.Points = nil
				touching = false
			}
		}

		// Step 5: with speculative contacts disabled, a two-point
		// manifold keeps at most one point once either exceeds
		// 1.5*linearSlop separation. original_source/src/contact.c:
		// 590-602 tests points[0] twice (a duplicated condition spec.md
		// §9 calls out as an open question); the policy resolved here
		// tests each point once and drops whichever one is shallow.
		if !r.enableSpeculative && len(manifold.Points) == 2 {
			const speculativeDropThreshold = 1.5 * linearSlop
			p0, p1 := manifold.Points[0], manifold.Points[1]
			switch {
			case p0.Separation > speculativeDropThreshold:
				manifold.Points = manifold.Points[1:2]
			case p1.Separation > speculativeDropThreshold:
				manifold.Points = manifold.Points[0:1]
			}
		}

		bodyA := bodies(c.BodyIdA)
		bodyB := bodies(c.BodyIdB)

		was := c.Flags&FlagTouching != 0
		if touching && !was {
			c.Flags |= FlagTouching
			if c.Flags&FlagEnableContactEvents != 0 {
				r.BeginTouch = append(r.BeginTouch, id)
			}
			recordFirstTouchVelocity(manifold, bodyA, bodyB)
		} else if !touching && was {
			c.Flags &^= FlagTouching
			if c.Flags&FlagEnableContactEvents != 0 {
				r.EndTouch = append(r.EndTouch, id)
			}
		}

		carryOverImpulses(manifold.Points, c.lastPoints)
		c.lastPoints = manifold.Points

		if touching && c.Flags&FlagIsSensor == 0 {
			sims = append(sims, &ContactSim{
				ContactId:         id,
				BodyIdA:           c.BodyIdA,
				BodyIdB:           c.BodyIdB,
				Manifold:          manifold,
				InvMassA:          bodyA.InvMass,
				InvMassB:          bodyB.InvMass,
				InvInertiaA:       bodyA.InvInertia,
				InvInertiaB:       bodyB.InvInertia,
				Friction:          c.Friction,
				Restitution:       c.Restitution,
				RollingResistance: c.RollingResistance,
				TangentSpeed:      c.TangentSpeed,
			})
		}
	}

	return sims
}

// carryOverImpulses copies each new point's matching previous-step point's
// accumulated impulses forward by Id, the warm-start match spec §4.8
// describes; a point with no matching id (a fresh contact feature) starts
// from zero, same as a brand new contact would. RelativeVelocity, once
// recorded at first touch, rides along the same way so the restitution
// pass (C9) can still see it on every later step the contact persists.
func carryOverImpulses(points []ManifoldPoint, previous []ManifoldPoint) {

	if len(previous) == 0 {
		return
	}
	for i := range points {
		for _, old := range previous {
			if old.Id == points[i].Id {
				points[i].NormalImpulse = old.NormalImpulse
				points[i].TangentImpulse = old.TangentImpulse
				points[i].MaxNormalImpulse = old.MaxNormalImpulse
				points[i].RelativeVelocity = old.RelativeVelocity
				break
			}
		}
	}
}

// recordFirstTouchVelocity stamps each point's RelativeVelocity with the
// pair's current (pre-solve) normal-direction closing speed, spec
// §4.9's "normal velocity at the moment of first touch" the restitution
// pass later compares against the world's restitution threshold.
func recordFirstTouchVelocity(manifold Manifold, bodyA, bodyB *object.Body) {

	for i := range manifold.Points {
		p := &manifold.Points[i]
		vA := bodyA.VelocityAtLocalPoint(math2d.Sub2(p.Point, bodyA.WorldCenter()))
		vB := bodyB.VelocityAtLocalPoint(math2d.Sub2(p.Point, bodyB.WorldCenter()))
		p.RelativeVelocity = math2d.Dot(math2d.Sub2(vB, vA), manifold.Normal)
	}
}

// DrainEvents returns and clears the accumulated begin/end touch lists,
// the double-buffer swap C12's event queue performs once per step.
func (r *Registry) DrainEvents() (begin, end []idpool.Handle) {

	begin, end = r.BeginTouch, r.EndTouch
	r.BeginTouch, r.EndTouch = nil, nil
	return begin, end
}
