// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/equation"
	"github.com/gophysics/kinetic2d/physics/graph"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/joint"
	"github.com/gophysics/kinetic2d/physics/object"
)

// Input is everything Step needs to run one whole step: the awake
// bodies, this step's touching contacts (C8's Refresh output) and
// enabled joints (C5's Prepare output), plus the tuning spec §4.9 names
// (substep count, gravity, restitution threshold).
type Input struct {
	Bodies   []*object.Body
	Contacts []*contact.ContactSim
	Joints   []*joint.JointSim

	Gravity              math2d.Vec2
	SubstepCount         int
	RestitutionThreshold float64
}

// constraintKind tags a graph.Constraint's Id so Step's color-ordered
// pass knows whether to dispatch to a contact or a joint, the same
// (entityId<<1)|kind edge-key convention spec §9's Design Notes use for
// every intrusive edge list in this core.
const (
	constraintKindContact uint64 = 0
	constraintKindJoint   uint64 = 1
)

func edgeKey(index int, kind uint64) uint64 { return uint64(index)<<1 | kind }

func edgeIndex(id uint64) (index int, kind uint64) { return int(id >> 1), id & 1 }

// Step runs the whole-step substep loop spec §4.9 (C9) describes and
// then immediately commits it: Solve followed by WriteBack for every
// body and WriteBackContactImpulses. Most callers want this — see Solve
// for the one that doesn't.
//
// Grounded on gs.go's GaussSeidel.Solve ("reset per-equation working
// state once, iterate a fixed pass count, accumulate a clamped impulse
// per constraint, apply straight to a per-body accumulator"),
// generalized from a single flat equation list solved to a numeric
// tolerance into spec §4.9's substep/color/useBias structure.
// Constraints are processed in graph.Color's deterministic (color
// index, position-in-color) order — this solver never exploits the
// coloring for concurrency, only for the run-to-run determinism spec
// §4.9's "Determinism" paragraph asks for.
func Step(in Input, dt float64) {

	states, contactConstraints := Solve(in, dt)

	for _, b := range in.Bodies {
		WriteBack(b, states[b.Id])
	}
	WriteBackContactImpulses(in.Contacts, contactConstraints)
}

// Solve runs the same substep loop as Step but stops short of
// committing: it returns the final BodyState for every body (after the
// last substep's position integration, before WriteBack overwrites
// Body.Transform) and the solved ContactConstraints, instead of writing
// either back itself.
//
// This is what lets continuous collision (C10) run as the distinct
// phase after C9 spec's own component table describes: the world
// orchestrator calls Solve, lets physics/toi clamp any bullet body's
// BodyState.DeltaPosition/DeltaRotation against its swept first impact,
// and only then calls WriteBack — a step Step itself skips straight
// past.
func Solve(in Input, dt float64) (map[idpool.Handle]*BodyState, []*equation.ContactConstraint) {

	if in.SubstepCount <= 0 {
		in.SubstepCount = 1
	}
	h := dt / float64(in.SubstepCount)
	invH := 0.0
	if h > 0 {
		invH = 1 / h
	}

	bodyByID := make(map[idpool.Handle]*object.Body, len(in.Bodies))
	for _, b := range in.Bodies {
		bodyByID[b.Id] = b
	}
	isStatic := func(id idpool.Handle) bool {
		b := bodyByID[id]
		return b == nil || b.Type == object.Static
	}

	constraints := make([]graph.Constraint, 0, len(in.Contacts)+len(in.Joints))
	for i, cs := range in.Contacts {
		constraints = append(constraints, graph.Constraint{Id: edgeKey(i, constraintKindContact), BodyA: cs.BodyIdA, BodyB: cs.BodyIdB})
	}
	for i, js := range in.Joints {
		constraints = append(constraints, graph.Constraint{Id: edgeKey(i, constraintKindJoint), BodyA: js.BodyIdA, BodyB: js.BodyIdB})
	}
	coloring := graph.Color(constraints, isStatic)

	contactConstraints := make([]*equation.ContactConstraint, len(in.Contacts))
	for i, cs := range in.Contacts {
		contactConstraints[i] = prepareContactConstraint(cs, bodyByID[cs.BodyIdA], bodyByID[cs.BodyIdB], h)
	}

	states := make(map[idpool.Handle]*BodyState, len(in.Bodies))
	bodyState := func(id idpool.Handle) *BodyState { return states[id] }

	solveOneConstraint := func(c graph.Constraint, useBias bool) {
		index, kind := edgeIndex(c.Id)
		if kind == constraintKindContact {
			cs := in.Contacts[index]
			SolveContact(contactConstraints[index], bodyState(cs.BodyIdA), bodyState(cs.BodyIdB), invH, useBias)
			return
		}
		js := in.Joints[index]
		solveJoint(js, bodyState(js.BodyIdA), bodyState(js.BodyIdB), invH, useBias)
	}

	solveColorOrdered := func(useBias bool) {
		for _, color := range coloring.NonEmptyColors() {
			for _, c := range coloring.Colors[color] {
				solveOneConstraint(c, useBias)
			}
		}
		for _, c := range coloring.Overflow {
			solveOneConstraint(c, useBias)
		}
	}

	for substep := 0; substep < in.SubstepCount; substep++ {

		for _, b := range in.Bodies {
			states[b.Id] = PrepareBody(b, h, in.Gravity, math2d.Vec2{})
		}

		for i, cs := range in.Contacts {
			WarmStartContact(contactConstraints[i], bodyState(cs.BodyIdA), bodyState(cs.BodyIdB))
		}
		for _, js := range in.Joints {
			WarmStartJoint(js, bodyState(js.BodyIdA), bodyState(js.BodyIdB))
		}

		solveColorOrdered(true)
		if substep == 0 {
			for i, cs := range in.Contacts {
				ApplyRestitution(contactConstraints[i], bodyState(cs.BodyIdA), bodyState(cs.BodyIdB), in.RestitutionThreshold)
			}
		}
		solveColorOrdered(false)

		// Position iterations: re-solve with useBias=false again to
		// drain whatever drift the velocity passes above left behind
		// (spec §4.9 "Position iterations ... re-solve with useBias =
		// false to drain accumulated drift").
		solveColorOrdered(false)

		for _, b := range in.Bodies {
			IntegratePosition(states[b.Id], h)
		}
	}

	return states, contactConstraints
}

// prepareContactConstraint builds a ContactConstraint from a
// ContactSim's manifold and the two bodies' current mass/position state
// (spec §4.9's "prepare" phase for a contact), then restores each
// point's persisted impulses and first-touch RelativeVelocity so
// warm-start and the restitution pass see what Refresh (C8) carried
// forward.
func prepareContactConstraint(cs *contact.ContactSim, bodyA, bodyB *object.Body, h float64) *equation.ContactConstraint {

	points := make([]math2d.Vec2, len(cs.Manifold.Points))
	separations := make([]float64, len(cs.Manifold.Points))
	for i, p := range cs.Manifold.Points {
		points[i] = p.Point
		separations[i] = p.Separation
	}

	softness := equation.MakeSoft(equation.ContactHertz, equation.ContactDampingRatio, h)
	cc := equation.PrepareContact(
		cs.Manifold.Normal, points, separations,
		bodyA.WorldCenter(), bodyB.WorldCenter(),
		cs.InvMassA, cs.InvMassB, cs.InvInertiaA, cs.InvInertiaB,
		cs.Friction, cs.Restitution, cs.RollingResistance, cs.TangentSpeed,
		softness,
	)

	for i, p := range cs.Manifold.Points {
		cc.Points[i].NormalImpulse = p.NormalImpulse
		cc.Points[i].TangentImpulse = p.TangentImpulse
		cc.Points[i].MaxNormalImpulse = p.MaxNormalImpulse
		cc.Points[i].RelativeVelocity = p.RelativeVelocity
	}

	return cc
}

// WriteBackContactImpulses copies each solved ContactConstraint's
// accumulated impulses back onto its ContactSim's manifold points, so
// the registry's next Refresh (C8) has the values carryOverImpulses
// needs to warm-start the following step.
func WriteBackContactImpulses(sims []*contact.ContactSim, ccs []*equation.ContactConstraint) {

	for i, cs := range sims {
		cc := ccs[i]
		for j := range cs.Manifold.Points {
			cs.Manifold.Points[j].NormalImpulse = cc.Points[j].NormalImpulse
			cs.Manifold.Points[j].TangentImpulse = cc.Points[j].TangentImpulse
			cs.Manifold.Points[j].MaxNormalImpulse = cc.Points[j].MaxNormalImpulse
		}
	}
}
