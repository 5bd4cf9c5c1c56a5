// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joint

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
)

// BodyFrame carries the per-step body state Prepare needs: the current
// transform (to rotate each joint's local frame into world space) and
// mass properties, mirroring what Constraint.Update's bodyA/bodyB
// IBody interface exposed (Quaternion, VectorToWorld) but reduced to
// the flat fields Prepare actually consumes.
type BodyFrame struct {
	Center     math2d.Vec2 // world-space center of mass
	Rotation   math2d.Rot
	InvMass    float64
	InvInertia float64
}

// worldAnchor rotates a joint-local anchor into world space relative to
// the body's center of mass, the 2D equivalent of the teacher's
// PointToPoint.Update rotating pivotA/pivotB by each body's quaternion.
func worldAnchor(frame Frame, body BodyFrame) math2d.Vec2 {

	return math2d.RotateVec(body.Rotation, frame.Anchor)
}

// relativeAngle returns bodyB's angle minus bodyA's, computed from their
// rotations directly (so callers never need to unwrap a stored angle),
// the 2D equivalent of the teacher's hinge deriving a relative
// orientation from two quaternions.
func relativeAngle(a, b BodyFrame) float64 {

	return math2d.InvMulRot(a.Rotation, b.Rotation).Angle()
}

// anchorAxis returns the unit vector from bodyA's anchor to bodyB's
// anchor and the current distance between them, the quantity every
// axial (distance/prismatic/wheel) joint constrains.
func anchorAxis(a, b BodyFrame, rA, rB math2d.Vec2) (axis math2d.Vec2, length float64) {

	d := math2d.Sub2(math2d.Add2(b.Center, rB), math2d.Add2(a.Center, rA))
	length = d.Length()
	if length < 1e-9 {
		return math2d.Vec2{X: 1}, 0
	}
	return math2d.Scale2(d, 1/length), length
}

// axialMass returns the effective mass along axis, the 1-DOF case of
// physics/equation's effectiveMass (shared shape, inlined here since
// physics/equation keeps that helper unexported and a joint-axis mass
// is a property of the current anchors/axis rather than a contact
// normal).
func axialMass(a, b BodyFrame, rA, rB math2d.Vec2, axis math2d.Vec2) float64 {

	crA := rA.Cross(axis)
	crB := rB.Cross(axis)

	k := a.InvMass + b.InvMass + a.InvInertia*crA*crA + b.InvInertia*crB*crB
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// Prepare builds the per-step JointSim for j, dispatching on j.Type the
// way spec §4.9 calls for ("Prepare/warm-start/solve each dispatch once
// per pass, not per constraint-row") and the teacher's per-constraint
// Update() methods do per-type (PointToPoint.Update, Hinge.Update
// layering PointToPoint.Update plus its own rotational equations).
func Prepare(j *Joint, a, b BodyFrame, h float64) *JointSim {

	rA := worldAnchor(j.FrameA, a)
	rB := worldAnchor(j.FrameB, b)

	sim := &JointSim{
		JointId:     j.Id,
		Type:        j.Type,
		BodyIdA:     j.BodyIdA,
		BodyIdB:     j.BodyIdB,
		InvMassA:    a.InvMass,
		InvMassB:    b.InvMass,
		InvInertiaA: a.InvInertia,
		InvInertiaB: b.InvInertia,
		CenterDiff0: math2d.Sub2(b.Center, a.Center),
	}

	linearSoft := equation.MakeSoft(j.LinearHertz, j.LinearDampingRatio, h)
	angularSoft := equation.MakeSoft(j.AngularHertz, j.AngularDampingRatio, h)

	switch j.Type {
	case Distance:
		// One axial constraint along the line between anchors, the 2D
		// analogue of experimental/physics/constraint/distance.go
		// (itself a PointToPoint variant pinned to a fixed separation
		// instead of zero), generalized to optionally soften via
		// LinearHertz/LinearDampingRatio the way spec §4.5 "spring
		// hertz/damping" describes.
		axis, length := anchorAxis(a, b, rA, rB)
		mass := axialMass(a, b, rA, rB, axis)
		sim.Axial = &equation.LimitConstraint{
			Bilateral: true,
			Sign:      1,
			Reference: j.Length,
			Base:      length,
			Softness:  linearSoft,
			Mass:      mass,
			Axis:      axis,
			AnchorA:   rA,
			AnchorB:   rB,
		}
		if j.EnableLimit {
			sim.Lower, sim.Upper = buildLimitPair(j.LowerLimit, j.UpperLimit, length, linearSoft, mass, axis, rA, rB)
		}

	case Mouse:
		// Pure point-to-point drag target, same shape as
		// experimental/physics/constraint/pointtopoint.go but against an
		// implicit fixed point in world space (FrameB.Anchor in this
		// case is taken as already world-space, bodyB conventionally
		// being a kinematic/static anchor body).
		sim.Point = equation.PreparePoint(rA, rB, a.InvMass, b.InvMass, a.InvInertia, b.InvInertia, linearSoft)

	case Revolute:
		// Point-to-point pivot (experimental/physics/constraint/
		// pointtopoint.go) plus an optional angular spring/motor/limit
		// (experimental/physics/constraint/hinge.go's rotEq1/rotEq2/
		// motorEq, collapsed from 3D's two orthogonal axes to 2D's
		// single relative angle).
		sim.Point = equation.PreparePoint(rA, rB, a.InvMass, b.InvMass, a.InvInertia, b.InvInertia, linearSoft)
		angle := relativeAngle(a, b)
		sim.Angle = equation.PrepareAngle(angle, a.InvInertia, b.InvInertia, angularSoft)
		if j.EnableMotor {
			sim.Motor = equation.PrepareAngularMotor(j.MotorSpeed, equation.ForceLimit{Min: -j.MaxMotorForce * h, Max: j.MaxMotorForce * h}, a.InvInertia, b.InvInertia)
		}
		if j.EnableLimit {
			sim.Lower, sim.Upper = buildAngularLimitPair(j.LowerLimit, j.UpperLimit, angle, angularSoft, sim.Angle.AngularMass)
		}

	case Weld:
		// Both the pivot and the angle locked rigidly (or softly, via
		// LinearHertz/AngularHertz), the 2D equivalent of
		// experimental/physics/constraint/lock.go holding all 6 3D DoF.
		sim.Point = equation.PreparePoint(rA, rB, a.InvMass, b.InvMass, a.InvInertia, b.InvInertia, linearSoft)
		sim.Angle = equation.PrepareAngle(relativeAngle(a, b), a.InvInertia, b.InvInertia, angularSoft)

	case Prismatic, Wheel:
		// Constrain motion to lie along the joint axis: the
		// perpendicular component is a 1-DOF equality constraint
		// (reusing the bilateral axial row distance/wheel already use,
		// pinned to zero offset instead of a rest length) and the angle
		// is locked the way Weld's is (wheel adds a suspension spring
		// along the axis via LinearHertz, matching hertz/damping's role
		// for every soft joint in spec §4.5).
		axis, length := anchorAxis(a, b, rA, rB)
		mass := axialMass(a, b, rA, rB, axis)
		sim.Axial = &equation.LimitConstraint{Bilateral: true, Sign: 1, Reference: 0, Base: length, Softness: linearSoft, Mass: mass, Axis: axis, AnchorA: rA, AnchorB: rB}
		sim.Angle = equation.PrepareAngle(relativeAngle(a, b), a.InvInertia, b.InvInertia, angularSoft)
		if j.EnableMotor {
			sim.Motor = equation.PrepareAngularMotor(j.MotorSpeed, equation.ForceLimit{Min: -j.MaxMotorForce * h, Max: j.MaxMotorForce * h}, a.InvMass, b.InvMass)
		}
		if j.EnableLimit {
			sim.Lower, sim.Upper = buildLimitPair(j.LowerLimit, j.UpperLimit, length, linearSoft, mass, axis, rA, rB)
		}

	case Motor:
		// A standalone velocity-target joint with no positional
		// constraint at all (neither pivot nor angle), matching the
		// teacher's RotationalMotor used bare (without a wrapping
		// PointToPoint) for a free spin motor between two bodies.
		sim.Motor = equation.PrepareAngularMotor(j.MotorSpeed, equation.ForceLimit{Min: -j.MaxMotorForce * h, Max: j.MaxMotorForce * h}, a.InvInertia, b.InvInertia)
	}

	return sim
}

// buildLimitPair constructs the two one-sided linear LimitConstraints
// (lower, upper) spec §4.9 wants for a bounded translational axis, each
// carrying its own accumulated impulse.
func buildLimitPair(lower, upper, base float64, soft equation.Softness, mass float64, axis, rA, rB math2d.Vec2) (lo, hi *equation.LimitConstraint) {

	loSign, loRef := equation.LowerLimit(lower)
	hiSign, hiRef := equation.UpperLimit(upper)
	return &equation.LimitConstraint{Sign: loSign, Reference: loRef, Base: base, Softness: soft, Mass: mass, Axis: axis, AnchorA: rA, AnchorB: rB},
		&equation.LimitConstraint{Sign: hiSign, Reference: hiRef, Base: base, Softness: soft, Mass: mass, Axis: axis, AnchorA: rA, AnchorB: rB}
}

// buildAngularLimitPair is buildLimitPair's angular analogue (no
// Axis/anchors; SolveLimit treats a zero Axis as "this row bounds the
// relative angle, not a translation").
func buildAngularLimitPair(lower, upper, base float64, soft equation.Softness, mass float64) (lo, hi *equation.LimitConstraint) {

	loSign, loRef := equation.LowerLimit(lower)
	hiSign, hiRef := equation.UpperLimit(upper)
	return &equation.LimitConstraint{Sign: loSign, Reference: loRef, Base: base, Softness: soft, Mass: mass},
		&equation.LimitConstraint{Sign: hiSign, Reference: hiRef, Base: base, Softness: soft, Mass: mass}
}
