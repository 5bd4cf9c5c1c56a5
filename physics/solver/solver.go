// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the substepped TGS-soft constraint solver
// (spec §4.9, C9): split dt into N substeps of h = dt/N, and per substep
// prepare, warm-start, run relaxation iterations (one pass with
// useBias=true, one with useBias=false) ordered by the constraint
// graph's colors, then integrate and write back.
//
// Grounded on physics/solver/gs.go's GaussSeidel.Solve — the same
// "precompute invC/b once, iterate accumulating a clamped lambda per
// equation, apply the resulting delta straight to a per-body velocity
// accumulator" shape — generalized from a single flat equation list to
// spec §4.9's soft (bias/massScale/impulseScale) per-point contact and
// joint formulation, processed color-by-color instead of in flat
// registration order (parallel-safety is not exploited here, the
// sequencing is kept for determinism, matching spec's "constraint
// processing order is fully determined by (color index, position within
// color's vector)").
package solver

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
	"github.com/gophysics/kinetic2d/physics/object"
)

// BodyState is the per-substep working copy of a body's velocity and
// accumulated position drift (spec §4.9 "BodyState {linearVelocity,
// angularVelocity, deltaPosition, deltaRotation}"), generalized from the
// teacher's GaussSeidel.VelocityDeltas/AngularVelocityDeltas (a
// velocity-only accumulator applied back to the body after the whole
// solve) into a persistent copy the bias terms read directly, the way a
// TGS-soft solver must since its bias is a function of the
// already-integrated pseudo-position.
type BodyState struct {
	LinearVelocity  math2d.Vec2
	AngularVelocity float64

	DeltaPosition math2d.Vec2
	DeltaRotation math2d.Rot

	InvMass, InvInertia float64
}

// PrepareBody builds a BodyState from a body's current velocity, applying
// gravity and linear/angular damping (spec §4.9's "v += h*(gravity*
// gravityScale + invMass*externalForce); v *= 1/(1+h*linearDamping)")
// and motion locks. externalAccel is any already-mass-divided external
// force the caller's force accumulator produced (zero if none applied
// this step).
func PrepareBody(b *object.Body, h float64, gravity, externalAccel math2d.Vec2) *BodyState {

	v := b.LinearVelocity
	w := b.AngularVelocity

	if b.Type == object.Dynamic {
		accel := math2d.Add2(math2d.Scale2(gravity, b.GravityScale), externalAccel)
		v = math2d.Add2(v, math2d.Scale2(accel, h))
		v = math2d.Scale2(v, 1/(1+h*b.LinearDamping))
		w = w / (1 + h*b.AngularDamping)
	}

	if b.Locks.X {
		v.X = 0
	}
	if b.Locks.Y {
		v.Y = 0
	}
	if b.Locks.AngularZ {
		w = 0
	}

	return &BodyState{
		LinearVelocity:  v,
		AngularVelocity: w,
		DeltaRotation:   math2d.IdentityRot,
		InvMass:         b.InvMass,
		InvInertia:      b.InvInertia,
	}
}

// IntegratePosition advances a BodyState's delta position/rotation by h
// (spec §4.9 "position += h*linearVelocity, rotation *= expMap(h*
// angularVelocity)"), accumulating into DeltaPosition/DeltaRotation
// rather than writing to the body directly — the body is only updated
// once, after the final substep (see WriteBack).
func IntegratePosition(s *BodyState, h float64) {

	s.DeltaPosition = math2d.Add2(s.DeltaPosition, math2d.Scale2(s.LinearVelocity, h))
	s.DeltaRotation = math2d.IntegrateRot(s.DeltaRotation, s.AngularVelocity, h)
}

// WriteBack applies a BodyState's accumulated velocity and position
// drift onto the body it was prepared from (spec §4.9 "After the final
// substep, write BodyState back to bodies"). DeltaPosition/DeltaRotation
// accumulate about the body's center of mass, not its origin, so the
// new origin is re-derived from the new center the way
// Body.WorldCenter's inverse would.
func WriteBack(b *object.Body, s *BodyState) {

	b.LinearVelocity = s.LinearVelocity
	b.AngularVelocity = s.AngularVelocity

	newCenter := math2d.Add2(b.WorldCenter(), s.DeltaPosition)
	newRotation := math2d.MulRot(b.Transform.Q, s.DeltaRotation)

	b.Transform.Q = newRotation
	b.Transform.P = math2d.Sub2(newCenter, math2d.RotateVec(newRotation, b.LocalCenter))
}

// maxBiasVelocity caps how fast a penetration's positional bias may push
// bodies apart in one substep, the same fixed-cap idea every TGS-soft
// engine in this generation applies to keep the bias term from injecting
// more energy than a deep, momentary penetration should.
const maxBiasVelocity = 4.0

// separationBias returns (bias, massScale, impulseScale) for one scalar
// contact-normal-like row given its current separation, following the
// three-way split spec §4.9 describes: a still-separated (speculative)
// point gets an unsoftened "close the gap by the next substep" bias; a
// penetrating point gets the softened bias/massScale/impulseScale triple
// from Softness; the zero-bias relaxation pass ignores separation
// entirely.
func separationBias(separation float64, invH float64, soft equation.Softness, useBias bool) (bias, massScale, impulseScale float64) {

	if separation > 0 {
		return separation * invH, 1, 0
	}
	if useBias {
		bias = soft.BiasRate * separation
		if bias < -maxBiasVelocity {
			bias = -maxBiasVelocity
		}
		return bias, soft.MassScale, soft.ImpulseScale
	}
	return 0, 1, 0
}

func clamp(v, lo, hi float64) float64 {

	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func relativeVelocity(a, b *BodyState, rA, rB math2d.Vec2) math2d.Vec2 {

	vA := math2d.Add2(a.LinearVelocity, math2d.CrossScalar(a.AngularVelocity, rA))
	vB := math2d.Add2(b.LinearVelocity, math2d.CrossScalar(b.AngularVelocity, rB))
	return math2d.Sub2(vB, vA)
}

func applyImpulse(a, b *BodyState, rA, rB, impulse math2d.Vec2) {

	a.LinearVelocity = math2d.Sub2(a.LinearVelocity, math2d.Scale2(impulse, a.InvMass))
	a.AngularVelocity -= a.InvInertia * rA.Cross(impulse)

	b.LinearVelocity = math2d.Add2(b.LinearVelocity, math2d.Scale2(impulse, b.InvMass))
	b.AngularVelocity += b.InvInertia * rB.Cross(impulse)
}

func applyAngularImpulse(a, b *BodyState, impulse float64) {

	a.AngularVelocity -= a.InvInertia * impulse
	b.AngularVelocity += b.InvInertia * impulse
}

// abs is a small local helper so call sites below don't need to import
// math twice or spell out math.Abs everywhere.
func abs(v float64) float64 { return math.Abs(v) }
