// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equation

import (
	"github.com/gophysics/kinetic2d/math2d"
)

// ContactPointConstraint is the prepared per-point solver state for one
// manifold point: effective masses, anchors, and the accumulated
// impulses the substep loop updates in place (spec §4.9; warm-start
// carry-over keyed by ManifoldPoint.Id happens one layer up, in the
// contact package). Generalized from the teacher's Contact equation,
// which bundled a single rA/rB/nA/restitution set per *equation* (one
// equation per point); this struct is the per-point slice of what here
// is one ContactConstraint per manifold, following spec §4.9's "a
// manifold's points share one normal/tangent frame".
type ContactPointConstraint struct {
	AnchorA, AnchorB math2d.Vec2
	BaseSeparation   float64 // separation at prepare time, before any bias

	NormalMass  float64
	TangentMass float64

	NormalImpulse    float64
	TangentImpulse   float64
	MaxNormalImpulse float64

	RelativeVelocity float64 // normal velocity at the moment of first touch, for restitution
}

// ContactConstraint is the prepared per-manifold solver state: a shared
// normal/tangent frame (the teacher's nA, generalized to 2D) plus
// per-point constraints.
type ContactConstraint struct {
	Normal            math2d.Vec2
	Friction          float64
	Restitution       float64
	RollingResistance float64
	TangentSpeed      float64
	Softness          Softness

	InvMassA, InvMassB       float64
	InvInertiaA, InvInertiaB float64

	Points []ContactPointConstraint

	// RollingImpulse is the single rolling-resistance impulse shared
	// across the whole manifold (spec §4.9's rolling-resistance
	// equation acts on relative angular velocity, not per-point).
	RollingImpulse float64
}

// effectiveMass returns 1/(invMassA+invMassB+invIA*rnA^2+invIB*rnB^2),
// the standard two-body effective mass along a direction whose moment
// arms are rA, rB and whose direction-crossed arms are rnA, rnB — the
// 2D form of the teacher's ComputeGiMGt (G*inv(M)*G').
func effectiveMass(invMassA, invMassB, invIA, invIB, rnA, rnB float64) float64 {

	k := invMassA + invMassB + invIA*rnA*rnA + invIB*rnB*rnB
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// PrepareContact builds a ContactConstraint from a manifold's normal,
// world-space contact points and per-point separations, plus the two
// bodies' mass properties, computing per-point anchors (relative to each
// center of mass) and normal/tangent effective masses once per step,
// matching spec §4.9's "prepare" solver phase (the same per-step
// precomputation the teacher's ComputeGiMGt/ComputeB pair does lazily
// per-iteration instead — precomputing once is the TGS-soft-constraint
// generalization spec §4.9 calls for).
func PrepareContact(
	normal math2d.Vec2,
	points []math2d.Vec2,
	separations []float64,
	centerA, centerB math2d.Vec2,
	invMassA, invMassB, invIA, invIB float64,
	friction, restitution, rollingResistance, tangentSpeed float64,
	softness Softness,
) *ContactConstraint {

	cc := &ContactConstraint{
		Normal:            normal,
		Friction:          friction,
		Restitution:       restitution,
		RollingResistance: rollingResistance,
		TangentSpeed:      tangentSpeed,
		Softness:          softness,
		InvMassA:          invMassA,
		InvMassB:          invMassB,
		InvInertiaA:       invIA,
		InvInertiaB:       invIB,
		Points:            make([]ContactPointConstraint, len(points)),
	}

	tangent := math2d.Perp2(normal)

	for i, p := range points {
		rA := math2d.Sub2(p, centerA)
		rB := math2d.Sub2(p, centerB)

		rnA := rA.Cross(normal)
		rnB := rB.Cross(normal)
		rtA := rA.Cross(tangent)
		rtB := rB.Cross(tangent)

		cc.Points[i] = ContactPointConstraint{
			AnchorA:        rA,
			AnchorB:        rB,
			BaseSeparation: separations[i],
			NormalMass:     effectiveMass(invMassA, invMassB, invIA, invIB, rnA, rnB),
			TangentMass:    effectiveMass(invMassA, invMassB, invIA, invIB, rtA, rtB),
		}
	}

	return cc
}
