// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
	"github.com/gophysics/kinetic2d/physics/joint"
)

// WarmStartJoint applies every accumulated impulse in sim to the two
// bodies, the joint analogue of WarmStartContact.
func WarmStartJoint(sim *joint.JointSim, bodyA, bodyB *BodyState) {

	if sim.Point != nil {
		applyImpulse(bodyA, bodyB, sim.Point.AnchorA, sim.Point.AnchorB, sim.Point.Impulse)
	}
	if sim.Angle != nil {
		applyAngularImpulse(bodyA, bodyB, sim.Angle.Impulse)
	}
	if sim.Motor != nil {
		applyAngularImpulse(bodyA, bodyB, sim.Motor.Impulse)
	}
	if sim.Axial != nil {
		warmStartLimit(sim.Axial, bodyA, bodyB)
	}
	if sim.Lower != nil {
		warmStartLimit(sim.Lower, bodyA, bodyB)
	}
	if sim.Upper != nil {
		warmStartLimit(sim.Upper, bodyA, bodyB)
	}
}

// warmStartLimit applies one LimitConstraint's persisted impulse, either
// as a linear impulse along Axis (prismatic/wheel/distance) or as a pure
// angular impulse (revolute's angle limits, which leave Axis zero).
func warmStartLimit(lc *equation.LimitConstraint, bodyA, bodyB *BodyState) {

	if lc.Axis == (math2d.Vec2{}) {
		applyAngularImpulse(bodyA, bodyB, lc.Sign*lc.Impulse)
		return
	}
	impulse := math2d.Scale2(lc.Axis, lc.Sign*lc.Impulse)
	applyImpulse(bodyA, bodyB, lc.AnchorA, lc.AnchorB, impulse)
}

// SolvePoint resolves a 2x2 point-to-point block (spec §4.9's "Revolute
// joint: point-to-point 2x2 block"), mirroring SolveContact's normal-row
// shape but solved jointly in both axes at once via the prepared 2x2
// inverse mass instead of one scalar row at a time.
func SolvePoint(pc *equation.PointConstraint, bodyA, bodyB *BodyState, useBias bool) {

	rA, rB := pc.AnchorA, pc.AnchorB
	dv := relativeVelocity(bodyA, bodyB, rA, rB)

	var bias math2d.Vec2
	massScale, impulseScale := 1.0, 0.0
	if useBias {
		drift := math2d.Add2(math2d.Sub2(bodyB.DeltaPosition, bodyA.DeltaPosition), math2d.Sub2(rB, rA))
		bias = math2d.Scale2(drift, pc.Softness.BiasRate)
		massScale, impulseScale = pc.Softness.MassScale, pc.Softness.ImpulseScale
	}

	rhs := math2d.Add2(dv, bias)
	raw := pc.Mass.MulVec(rhs)
	impulse := math2d.Sub2(
		math2d.Scale2(raw, -massScale),
		math2d.Scale2(pc.Impulse, impulseScale),
	)

	pc.Impulse = math2d.Add2(pc.Impulse, impulse)
	applyImpulse(bodyA, bodyB, rA, rB, impulse)
}

// SolveAngle resolves a single relative-angle equality constraint (weld's
// angle lock, or a revolute joint's angular spring toward a target),
// the 1-DOF analogue of SolvePoint.
func SolveAngle(ac *equation.AngleConstraint, bodyA, bodyB *BodyState, currentAngle float64, useBias bool) {

	cdot := bodyB.AngularVelocity - bodyA.AngularVelocity

	bias, massScale, impulseScale := 0.0, 1.0, 0.0
	if useBias {
		bias = ac.Softness.BiasRate * (currentAngle - ac.ReferenceAngle)
		massScale, impulseScale = ac.Softness.MassScale, ac.Softness.ImpulseScale
	}

	impulse := -ac.AngularMass*massScale*(cdot+bias) - impulseScale*ac.Impulse
	ac.Impulse += impulse
	applyAngularImpulse(bodyA, bodyB, impulse)
}

// SolveMotor drives relative angular velocity toward TargetSpeed, clamped
// to Limit (spec §4.9's "angular motor (clamped accumulated impulse to
// h*maxMotorTorque)"), mirroring the teacher's RotationalMotor.ComputeB
// ("GW := ComputeGW() - targetSpeed") generalized to 2D's bare scalar
// relative angular velocity instead of a 3D axis projection.
func SolveMotor(mc *equation.MotorConstraint, bodyA, bodyB *BodyState) {

	cdot := bodyB.AngularVelocity - bodyA.AngularVelocity - mc.TargetSpeed

	impulse := -mc.Mass * cdot
	newImpulse := mc.Limit.Clamp(mc.Impulse + impulse)
	impulse = newImpulse - mc.Impulse
	mc.Impulse = newImpulse

	applyAngularImpulse(bodyA, bodyB, impulse)
}

// limitCurrentValue re-derives lc's live value (the "value" in C =
// Sign*value - Reference) from its Base at prepare time plus however
// far the two bodies have drifted since, the same BaseSeparation+drift
// shape SolveContact's separation uses: an angular row (Axis zero)
// drifts by the bodies' relative DeltaRotation angle, a linear one by
// the bodies' DeltaPosition difference projected onto Axis.
func limitCurrentValue(lc *equation.LimitConstraint, bodyA, bodyB *BodyState) float64 {

	if lc.Axis == (math2d.Vec2{}) {
		return lc.Base + (bodyB.DeltaRotation.Angle() - bodyA.DeltaRotation.Angle())
	}
	drift := math2d.Dot(math2d.Sub2(bodyB.DeltaPosition, bodyA.DeltaPosition), lc.Axis)
	return lc.Base + drift
}

// limitVelocity returns d(C)/dt for lc given the two bodies' current
// velocities: the relative angular velocity for an angular row (Axis
// zero), or the relative velocity projected onto Axis for a linear one.
func limitVelocity(lc *equation.LimitConstraint, bodyA, bodyB *BodyState) float64 {

	if lc.Axis == (math2d.Vec2{}) {
		return lc.Sign * (bodyB.AngularVelocity - bodyA.AngularVelocity)
	}
	dv := relativeVelocity(bodyA, bodyB, lc.AnchorA, lc.AnchorB)
	return lc.Sign * math2d.Dot(dv, lc.Axis)
}

// applyLimitImpulse pushes a scalar impulse magnitude (already signed by
// lc.Sign) onto the two bodies along lc's row.
func applyLimitImpulse(lc *equation.LimitConstraint, bodyA, bodyB *BodyState, impulse float64) {

	if lc.Axis == (math2d.Vec2{}) {
		applyAngularImpulse(bodyA, bodyB, lc.Sign*impulse)
		return
	}
	applyImpulse(bodyA, bodyB, lc.AnchorA, lc.AnchorB, math2d.Scale2(lc.Axis, lc.Sign*impulse))
}

// solveJoint dispatches one JointSim through every constraint block it
// carries, the per-joint-per-pass dispatch spec §4.9 calls for ("each
// exposes a constant set of scalar/vector impulse accumulators").
func solveJoint(js *joint.JointSim, bodyA, bodyB *BodyState, invH float64, useBias bool) {

	if js.Point != nil {
		SolvePoint(js.Point, bodyA, bodyB, useBias)
	}
	if js.Angle != nil {
		currentAngle := js.Angle.ReferenceAngle + (bodyB.DeltaRotation.Angle() - bodyA.DeltaRotation.Angle())
		SolveAngle(js.Angle, bodyA, bodyB, currentAngle, useBias)
	}
	if js.Motor != nil {
		SolveMotor(js.Motor, bodyA, bodyB)
	}
	c := func(lc *equation.LimitConstraint) float64 {
		return lc.Sign*limitCurrentValue(lc, bodyA, bodyB) - lc.Reference
	}
	if js.Axial != nil {
		SolveLimit(js.Axial, bodyA, bodyB, c(js.Axial), invH, useBias)
	}
	if js.Lower != nil {
		SolveLimit(js.Lower, bodyA, bodyB, c(js.Lower), invH, useBias)
	}
	if js.Upper != nil {
		SolveLimit(js.Upper, bodyA, bodyB, c(js.Upper), invH, useBias)
	}
}

// SolveLimit resolves one LimitConstraint row: a one-sided inequality
// (C = Sign*value - Reference >= 0, Impulse clamped >= 0), the same
// shape spec §4.9 wants for "lower/upper angle limits ... each clamped
// to >= 0", reusing SolveContact's separationBias/clamp-to-non-negative
// logic. A Bilateral row (distance's target length, prismatic/wheel's
// perpendicular lock) solves the same C but never clamps the impulse's
// sign, since it is an equality rather than a one-sided bound.
//
// currentValue is the row's current C = Sign*value - Reference, already
// evaluated by the caller from live body state (spec §4.9 computes this
// once per color-ordered pass, from the same pseudo-positions the
// contact normal's separation drift uses).
func SolveLimit(lc *equation.LimitConstraint, bodyA, bodyB *BodyState, currentValue float64, invH float64, useBias bool) {

	cdot := limitVelocity(lc, bodyA, bodyB)

	bias, massScale, impulseScale := separationBias(currentValue, invH, lc.Softness, useBias)
	if lc.Bilateral {
		bias, massScale, impulseScale = 0, 1, 0
		if useBias {
			bias = lc.Softness.BiasRate * currentValue
			massScale, impulseScale = lc.Softness.MassScale, lc.Softness.ImpulseScale
		}
	}

	impulse := -lc.Mass*massScale*(cdot+bias) - impulseScale*lc.Impulse
	newImpulse := lc.Impulse + impulse
	if !lc.Bilateral && newImpulse < 0 {
		newImpulse = 0
	}
	impulse = newImpulse - lc.Impulse
	lc.Impulse = newImpulse

	applyLimitImpulse(lc, bodyA, bodyB, impulse)
}
