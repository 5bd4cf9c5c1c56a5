// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equation

import "github.com/gophysics/kinetic2d/math2d"

// PointConstraint is a two-axis (x,y) equality constraint holding one
// anchor point on body A coincident with one anchor point on body B —
// the 2D form of the teacher's PointToPoint constraint, which solved the
// same coincidence along three world axes (eqX/eqY/eqZ, each an
// equation.Contact with an axis-aligned normal and an unbounded force
// range). A 2D point constraint only needs two axes; rather than two
// independent axis equations it is solved as one 2x2 block so the
// x/y impulse split accounts for the off-diagonal mass coupling a
// loose anchor under load produces, matching spec §4.9's joint-prepare
// step computing a block effective mass for point-to-point joints.
type PointConstraint struct {
	AnchorA, AnchorB math2d.Vec2 // anchors, relative to each body's center of mass, world-oriented

	Softness Softness

	// Mass is the inverse of the 2x2 K matrix (invMassA+invMassB
	// diagonal, plus the rotational coupling each anchor's moment arm
	// contributes), stored as its own 2x2 inverse so Solve can apply it
	// directly to a 2D velocity-error vector.
	Mass math2d.Mat22

	Impulse math2d.Vec2 // accumulated, for warm starting
}

// PreparePoint builds a PointConstraint's block effective mass from the
// two bodies' mass properties and anchors, mirroring the teacher's
// PointToPoint.Update rotating pivots to world space once per step (here
// the rotation already happened by the time the caller passes world
// anchors; this only derives the mass block, generalized from
// ComputeGiMGt's scalar form to the 2x2 case).
func PreparePoint(anchorA, anchorB math2d.Vec2, invMassA, invMassB, invIA, invIB float64, softness Softness) *PointConstraint {

	k11 := invMassA + invMassB + invIA*anchorA.Y*anchorA.Y + invIB*anchorB.Y*anchorB.Y
	k12 := -invIA*anchorA.X*anchorA.Y - invIB*anchorB.X*anchorB.Y
	k22 := invMassA + invMassB + invIA*anchorA.X*anchorA.X + invIB*anchorB.X*anchorB.X

	k := math2d.Mat22{Ex: math2d.Vec2{X: k11, Y: k12}, Ey: math2d.Vec2{X: k12, Y: k22}}

	return &PointConstraint{
		AnchorA:  anchorA,
		AnchorB:  anchorB,
		Softness: softness,
		Mass:     k.Inverse(),
	}
}

// AngleConstraint fixes the relative angle between two bodies (a weld
// joint's angular half, or a revolute joint's limit/motor target angle),
// the 2D collapse of the teacher's Rotational equation — which kept two
// local axes orthogonal in 3D (2 DoF) — down to the single relative-angle
// DoF a 2D rigid body has, following the same "g = target - current,
// Gdot = wB - wA" shape.
type AngleConstraint struct {
	ReferenceAngle float64 // bodyB.angle - bodyA.angle at joint creation, or the limit/motor target
	Softness       Softness
	AngularMass    float64 // 1/(invIA+invIB)
	Impulse        float64
}

// PrepareAngle derives AngularMass from the two bodies' inverse inertia.
func PrepareAngle(referenceAngle float64, invIA, invIB float64, softness Softness) *AngleConstraint {

	k := invIA + invIB
	mass := 0.0
	if k > 0 {
		mass = 1 / k
	}
	return &AngleConstraint{ReferenceAngle: referenceAngle, Softness: softness, AngularMass: mass}
}

// MotorConstraint drives the relative angular (or, for a prismatic
// joint's translation axis, linear) velocity between two bodies toward a
// target speed, clamped by a ForceLimit — the 2D analogue of the
// teacher's RotationalMotor, which drove relative angular velocity along
// a world axis toward a target speed with a symmetric +/-maxForce clamp.
// A 2D engine's rotational axis is always implicitly the z axis, so
// unlike RotationalMotor.axisA/axisB this carries no axis fields.
type MotorConstraint struct {
	TargetSpeed float64
	Limit       ForceLimit
	Mass        float64 // 1/(invIA+invIB) for an angular motor; 1/(invMassA+invMassB) for a prismatic's linear motor
	Impulse     float64
}

// PrepareAngularMotor builds a MotorConstraint for a revolute/wheel
// joint's angular motor.
func PrepareAngularMotor(targetSpeed float64, limit ForceLimit, invIA, invIB float64) *MotorConstraint {

	k := invIA + invIB
	mass := 0.0
	if k > 0 {
		mass = 1 / k
	}
	return &MotorConstraint{TargetSpeed: targetSpeed, Limit: limit, Mass: mass}
}

// LimitConstraint is one one-sided inequality row: C = Sign*value -
// Reference >= 0, Impulse >= 0 (a joint's lower OR upper translation/
// angle bound — spec §4.9's "lower/upper angle limits ... each clamped
// to >= 0" wants two independent accumulators, so a bounded joint
// prepares two LimitConstraints, one per side, rather than one
// double-sided row). Solved the same way a contact normal constraint is
// (NonNegativeForce-clamped, speculative-margin aware), since spec §4.9
// treats joint limits and contact normals identically once prepared.
//
// For a lower bound lo on value v: Sign=+1, Reference=lo (C = v-lo).
// For an upper bound hi on value v: Sign=-1, Reference=-hi (C = hi-v).
type LimitConstraint struct {
	Sign      float64
	Reference float64
	Mass      float64
	Softness  Softness
	Impulse   float64

	// Base is this row's value at prepare time (current length for a
	// linear row, current relative angle for an angular one). The
	// solver re-derives the live value each color-ordered pass as
	// Base plus however far the two bodies' substep positions have
	// drifted since prepare, the same BaseSeparation+drift shape
	// physics/equation.ContactPointConstraint uses for a manifold
	// point's separation.
	Base float64

	// Bilateral marks an equality row (distance's target length,
	// prismatic/wheel's "stay on the slide axis" perpendicular lock):
	// its impulse is never clamped to a sign, unlike a true one-sided
	// limit.
	Bilateral bool

	// Axis/AnchorA/AnchorB are set when this row bounds a linear
	// (prismatic/wheel/distance) degree of freedom instead of an
	// angular one; Axis is the world-space unit vector the impulse is
	// applied along, zero for angular rows.
	Axis             math2d.Vec2
	AnchorA, AnchorB math2d.Vec2
}

// LowerLimit builds the Sign/Reference pair for an angular or linear
// lower bound.
func LowerLimit(lo float64) (sign, reference float64) { return 1, lo }

// UpperLimit builds the Sign/Reference pair for an angular or linear
// upper bound.
func UpperLimit(hi float64) (sign, reference float64) { return -1, -hi }
