// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math2d

import "math"

// Rot is a 2D rotation stored as (cos, sin) rather than an angle, so that
// composing rotations and rotating vectors never needs a trig call on the
// hot solver path. This mirrors how 2D rigid-body engines in the pack
// (and the spec's Glossary entry for "Substep" / §4.9's expMap) represent
// orientation.
type Rot struct {
	C float64 // cos(angle)
	S float64 // sin(angle)
}

// IdentityRot is the zero-angle rotation.
var IdentityRot = Rot{C: 1, S: 0}

// NewRot creates a Rot from an angle in radians.
func NewRot(angle float64) Rot {

	return Rot{C: math.Cos(angle), S: math.Sin(angle)}
}

// Angle returns the angle in radians this rotation represents.
func (r Rot) Angle() float64 {

	return math.Atan2(r.S, r.C)
}

// Normalize renormalizes a rotation that has drifted off the unit circle
// after repeated incremental composition.
func (r Rot) Normalize() Rot {

	mag := math.Sqrt(r.C*r.C + r.S*r.S)
	if mag < 1e-12 {
		return IdentityRot
	}
	inv := 1 / mag
	return Rot{C: r.C * inv, S: r.S * inv}
}

// MulRot composes two rotations: q = a then b, i.e. b applied in a's frame.
func MulRot(a, b Rot) Rot {

	return Rot{
		C: a.C*b.C - a.S*b.S,
		S: a.S*b.C + a.C*b.S,
	}
}

// InvMulRot returns the rotation that maps frame a onto frame b, i.e.
// a^-1 * b.
func InvMulRot(a, b Rot) Rot {

	return Rot{
		C: a.C*b.C + a.S*b.S,
		S: a.C*b.S - a.S*b.C,
	}
}

// RotateVec rotates v by r.
func RotateVec(r Rot, v Vec2) Vec2 {

	return Vec2{r.C*v.X - r.S*v.Y, r.S*v.X + r.C*v.Y}
}

// InvRotateVec rotates v by the inverse (transpose) of r.
func InvRotateVec(r Rot, v Vec2) Vec2 {

	return Vec2{r.C*v.X + r.S*v.Y, -r.S*v.X + r.C*v.Y}
}

// IntegrateRot advances r by an angular velocity omega over dt using the
// first-order exponential map on SO(2) followed by renormalization,
// exactly as the spec's §4.9 "rotation *= expMap(h * angularVelocity)"
// prescribes. This avoids a trig call per body per substep while staying
// exact in the limit dt -> 0.
func IntegrateRot(r Rot, omega, dt float64) Rot {

	deltaAngle := omega * dt
	next := Rot{
		C: r.C - deltaAngle*r.S,
		S: r.S + deltaAngle*r.C,
	}
	return next.Normalize()
}
