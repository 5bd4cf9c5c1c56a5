// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math2d

// Transform2 is a rigid transform: a rotation followed by a translation.
// Body and Shape world placements are both expressed as a Transform2.
type Transform2 struct {
	P Vec2
	Q Rot
}

// IdentityTransform is the identity rigid transform.
var IdentityTransform = Transform2{P: Zero2, Q: IdentityRot}

// TransformPoint maps a point from the transform's local frame to world
// space.
func TransformPoint(t Transform2, local Vec2) Vec2 {

	return Add2(RotateVec(t.Q, local), t.P)
}

// InvTransformPoint maps a point from world space to the transform's
// local frame.
func InvTransformPoint(t Transform2, world Vec2) Vec2 {

	return InvRotateVec(t.Q, Sub2(world, t.P))
}

// TransformVector rotates (but does not translate) a direction vector
// from local to world space.
func TransformVector(t Transform2, local Vec2) Vec2 {

	return RotateVec(t.Q, local)
}

// InvTransformVector rotates a direction vector from world to local
// space.
func InvTransformVector(t Transform2, world Vec2) Vec2 {

	return InvRotateVec(t.Q, world)
}

// MulTransforms composes two transforms: applying the result to a point
// is the same as applying a then b.
func MulTransforms(a, b Transform2) Transform2 {

	return Transform2{
		P: Add2(RotateVec(a.Q, b.P), a.P),
		Q: MulRot(a.Q, b.Q),
	}
}

// InvMulTransforms returns the relative transform that maps a's frame
// onto b's frame: a^-1 * b.
func InvMulTransforms(a, b Transform2) Transform2 {

	return Transform2{
		P: InvRotateVec(a.Q, Sub2(b.P, a.P)),
		Q: InvMulRot(a.Q, b.Q),
	}
}

// TransformAABB returns the smallest world-space AABB enclosing local
// after every corner is mapped through t, the conservative bound a
// rotated shape's proxy needs (a plain corner-to-corner map would
// under-approximate once Q rotates the box off-axis).
func TransformAABB(t Transform2, local AABB) AABB {

	corners := [4]Vec2{
		{X: local.Min.X, Y: local.Min.Y},
		{X: local.Max.X, Y: local.Min.Y},
		{X: local.Max.X, Y: local.Max.Y},
		{X: local.Min.X, Y: local.Max.Y},
	}

	b := EmptyAABB()
	for _, c := range corners {
		p := TransformPoint(t, c)
		b.Min.X = minF(b.Min.X, p.X)
		b.Min.Y = minF(b.Min.Y, p.Y)
		b.Max.X = maxF(b.Max.X, p.X)
		b.Max.Y = maxF(b.Max.Y, p.Y)
	}
	return b
}

// Sweep describes a body's motion across one step for continuous
// collision: the transform at the start and the provisional transform at
// the end, about a local center of mass.
type Sweep struct {
	LocalCenter Vec2
	C1          Vec2 // center of mass position at t=0
	C2          Vec2 // center of mass position at t=1
	Q1          Rot  // orientation at t=0
	Q2          Rot  // orientation at t=1
}

// Interpolate returns the sweep's transform at fraction t in [0,1].
func (s Sweep) Interpolate(t float64) Transform2 {

	center := Vec2{
		X: s.C1.X + t*(s.C2.X-s.C1.X),
		Y: s.C1.Y + t*(s.C2.Y-s.C1.Y),
	}
	// Spherical-ish interpolation of the (cos,sin) pair is unnecessary at
	// the small angular steps a single substep covers; linear blend plus
	// renormalize is what Box2D-family engines use here too.
	q := Rot{
		C: s.Q1.C + t*(s.Q2.C-s.Q1.C),
		S: s.Q1.S + t*(s.Q2.S-s.Q1.S),
	}.Normalize()
	localCenterWorld := RotateVec(q, Neg2(s.LocalCenter))
	return Transform2{P: Add2(center, localCenterWorld), Q: q}
}
