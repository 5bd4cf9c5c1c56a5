// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

// Flags record transient per-contact state (spec §4.4's touching
// transitions and event opt-ins), mirrored from the owning shapes at
// creation time so the hot loop never has to chase shape pointers.
type Flags uint32

const (
	FlagTouching Flags = 1 << iota
	FlagEnableContactEvents
	FlagEnableHitEvents
	FlagEnablePreSolveEvents
	FlagIsSensor
)

// Contact is the persistent per-shape-pair record spec §3/§4.4 describe:
// it survives across steps (as long as the broad-phase pair persists),
// linking into each body's intrusive edge list via NextA/NextB the way
// spec §9's Design Notes prescribe for all edge lists in this core.
type Contact struct {
	Id idpool.Handle

	ShapeIdA, ShapeIdB idpool.Handle
	BodyIdA, BodyIdB   idpool.Handle

	Flags Flags

	Friction          float64
	Restitution       float64
	RollingResistance float64
	TangentSpeed      float64

	// Intrusive edge-list links, one pair of links per body (A's link
	// and B's link), keyed the way spec §9 describes: 0 means "no next".
	NextEdgeA, NextEdgeB idpool.Handle

	// lastPoints is the previous step's manifold points, kept only to
	// carry NormalImpulse/TangentImpulse/MaxNormalImpulse forward by
	// matching Id across steps (spec §4.8's warm-start carry-over).
	lastPoints []ManifoldPoint
}

// IsTouching reports whether the last narrow-phase refresh produced at
// least one manifold point (any point within SpeculativeDistance counts,
// including one with positive separation).
func (c *Contact) IsTouching() bool { return c.Flags&FlagTouching != 0 }

// ContactSim is the per-step simulation data for a touching contact:
// the live manifold plus the solver's persistent point state (warm-start
// impulses keyed by ManifoldPoint.Id across steps, spec §4.8).
type ContactSim struct {
	ContactId        idpool.Handle
	BodyIdA, BodyIdB idpool.Handle
	Manifold         Manifold

	InvMassA, InvMassB       float64
	InvInertiaA, InvInertiaB float64

	Friction          float64
	Restitution       float64
	RollingResistance float64
	TangentSpeed      float64
}

// FrictionCallback combines two shapes' friction coefficients (plus
// each shape's userMaterialId, so a host can key off an application
// material table instead of the raw floats) into the value a contact
// uses, spec §6's frictionCallback. Called both when a contact is
// created and on every narrow-phase refresh, since the shapes' own
// friction can be mutated live (original_source/src/contact.c:359,
// :538, comment "Keep these updated in case the values on the shapes
// are modified"). Must be pure: spec §5's concurrency contract runs it
// from worker threads.
type FrictionCallback func(frictionA float64, materialA int32, frictionB float64, materialB int32) float64

// RestitutionCallback is frictionCallback's restitution counterpart,
// spec §6's restitutionCallback, called at the same two points
// (original_source/src/contact.c:361, :540).
type RestitutionCallback func(restitutionA float64, materialA int32, restitutionB float64, materialB int32) float64

// PreSolveCallback inspects a touching contact's deepest point (the one
// with minimum separation) before the solver runs this step; returning
// false suppresses the contact for this step, spec §4.8 step 4 /
// spec §6 preSolveCallback, grounded on
// original_source/src/contact.c:559-586 (`b2UpdateContact`'s deepest-
// point search and `world->preSolveFcn` call). Must be pure, same
// concurrency contract as FrictionCallback.
type PreSolveCallback func(shapeIdA, shapeIdB idpool.Handle, point, normal math2d.Vec2) bool

// CustomFilterCallback augments Filter.ShouldCollide with an
// application-defined veto, spec §6 customFilterCallback: called only
// once the category/mask/group gate already passed, on pair creation.
// Not present in the retrieval pack's original_source/ files (grepped
// contact.c/joint.h for ShouldCollide/customFilterFcn - neither
// appears there, box2d's real hook lives in files this pack doesn't
// carry), so this one is grounded on spec §6's own description plus
// the existing Filter.ShouldCollide convention it augments rather than
// a literal C citation.
type CustomFilterCallback func(shapeIdA, shapeIdB idpool.Handle) bool

// Callbacks bundles the four pluggable hooks spec §6 names. A zero
// Callbacks falls back to DefaultFrictionCallback/
// DefaultRestitutionCallback, never suppresses a contact pre-solve,
// and never vetoes a pair beyond the category/mask/group filter.
type Callbacks struct {
	Friction     FrictionCallback
	Restitution  RestitutionCallback
	PreSolve     PreSolveCallback
	CustomFilter CustomFilterCallback
}

func (cb Callbacks) frictionOrDefault() FrictionCallback {
	if cb.Friction != nil {
		return cb.Friction
	}
	return DefaultFrictionCallback
}

func (cb Callbacks) restitutionOrDefault() RestitutionCallback {
	if cb.Restitution != nil {
		return cb.Restitution
	}
	return DefaultRestitutionCallback
}

// DefaultFrictionCallback is the Box2D-family default frictionCallback
// (geometric mean, zero if either side is non-positive) every 2D engine
// in the pack that has materials at all, g3n's
// experimental/physics/material.go, follows.
func DefaultFrictionCallback(frictionA float64, _ int32, frictionB float64, _ int32) float64 {

	if frictionA*frictionB <= 0 {
		return 0
	}
	return math.Sqrt(frictionA * frictionB)
}

// DefaultRestitutionCallback is the Box2D-family default
// restitutionCallback (max of the two sides).
func DefaultRestitutionCallback(restitutionA float64, _ int32, restitutionB float64, _ int32) float64 {

	if restitutionA > restitutionB {
		return restitutionA
	}
	return restitutionB
}

// NewContact creates a persistent contact record for the shape pair
// (shapeA, shapeB) using the package's default friction/restitution
// callbacks; a Registry built with non-default Callbacks creates
// contacts through newContact below instead.
func NewContact(id idpool.Handle, a, b *object.Shape) *Contact {

	return newContact(id, a, b, Callbacks{})
}

func newContact(id idpool.Handle, a, b *object.Shape, cb Callbacks) *Contact {

	friction := cb.frictionOrDefault()
	restitution := cb.restitutionOrDefault()

	c := &Contact{
		Id:       id,
		ShapeIdA: a.Id,
		ShapeIdB: b.Id,
		BodyIdA:  a.BodyId,
		BodyIdB:  b.BodyId,

		Friction:          friction(a.Material.Friction, a.Material.UserMaterialId, b.Material.Friction, b.Material.UserMaterialId),
		Restitution:       restitution(a.Material.Restitution, a.Material.UserMaterialId, b.Material.Restitution, b.Material.UserMaterialId),
		RollingResistance: maxF(a.Material.RollingResistance, b.Material.RollingResistance),
		TangentSpeed:      a.Material.TangentSpeed + b.Material.TangentSpeed,
	}

	if a.Flags.EnableContactEvents || b.Flags.EnableContactEvents {
		c.Flags |= FlagEnableContactEvents
	}
	if a.Flags.EnableHitEvents || b.Flags.EnableHitEvents {
		c.Flags |= FlagEnableHitEvents
	}
	if a.Flags.EnablePreSolveEvents || b.Flags.EnablePreSolveEvents {
		c.Flags |= FlagEnablePreSolveEvents
	}
	if a.Flags.SensorIndex != 0 || b.Flags.SensorIndex != 0 {
		c.Flags |= FlagIsSensor
	}

	return c
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
