// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package math2d implements the small set of 2D math primitives the
// simulation core needs: vectors, rotations, rigid transforms and a 2x2
// matrix solve. It deliberately mirrors math32's Vector2 method names and
// mutate-and-return-self style so the two packages read the same way, but
// it is its own package because the simulation core only needs a handful
// of 2D operations (in particular Cross/Skew and a closed-form Mat22
// solve) that math32 does not provide.
package math2d

import "math"

// Vec2 is a 2D vector or point with X and Y components.
type Vec2 struct {
	X float64
	Y float64
}

// Zero2 is the zero vector.
var Zero2 = Vec2{0, 0}

// NewVec2 creates and returns a pointer to a new Vec2 with the given
// components.
func NewVec2(x, y float64) *Vec2 {

	return &Vec2{X: x, Y: y}
}

// Set sets this vector's X and Y components and returns the pointer to
// this updated vector.
func (v *Vec2) Set(x, y float64) *Vec2 {

	v.X = x
	v.Y = y
	return v
}

// Zero sets this vector to zero and returns the pointer to it.
func (v *Vec2) Zero() *Vec2 {

	v.X = 0
	v.Y = 0
	return v
}

// Copy copies the other vector into this one and returns the pointer to
// this updated vector.
func (v *Vec2) Copy(other Vec2) *Vec2 {

	v.X = other.X
	v.Y = other.Y
	return v
}

// Clone returns a copy of this vector.
func (v Vec2) Clone() Vec2 {

	return Vec2{v.X, v.Y}
}

// Add adds other to this vector and returns the pointer to this updated
// vector.
func (v *Vec2) Add(other Vec2) *Vec2 {

	v.X += other.X
	v.Y += other.Y
	return v
}

// AddScaled adds other scaled by s to this vector and returns the pointer
// to this updated vector.
func (v *Vec2) AddScaled(other Vec2, s float64) *Vec2 {

	v.X += other.X * s
	v.Y += other.Y * s
	return v
}

// AddVectors sets this vector to a+b and returns the pointer to this
// updated vector.
func (v *Vec2) AddVectors(a, b Vec2) *Vec2 {

	v.X = a.X + b.X
	v.Y = a.Y + b.Y
	return v
}

// Sub subtracts other from this vector and returns the pointer to this
// updated vector.
func (v *Vec2) Sub(other Vec2) *Vec2 {

	v.X -= other.X
	v.Y -= other.Y
	return v
}

// SubVectors sets this vector to a-b and returns the pointer to this
// updated vector.
func (v *Vec2) SubVectors(a, b Vec2) *Vec2 {

	v.X = a.X - b.X
	v.Y = a.Y - b.Y
	return v
}

// MultiplyScalar multiplies this vector by s and returns the pointer to
// this updated vector.
func (v *Vec2) MultiplyScalar(s float64) *Vec2 {

	v.X *= s
	v.Y *= s
	return v
}

// Negate negates this vector's components and returns the pointer to this
// updated vector.
func (v *Vec2) Negate() *Vec2 {

	v.X = -v.X
	v.Y = -v.Y
	return v
}

// Dot returns the dot product of this vector with other.
func (v Vec2) Dot(other Vec2) float64 {

	return v.X*other.X + v.Y*other.Y
}

// Cross returns the Z component of the 3D cross product (this x other),
// i.e. the scalar "2D cross product".
func (v Vec2) Cross(other Vec2) float64 {

	return v.X*other.Y - v.Y*other.X
}

// CrossScalar returns s * v rotated 90 degrees, i.e. the 2D analogue of
// the cross product between a scalar (Z-axis vector) and a vector.
func CrossScalar(s float64, v Vec2) Vec2 {

	return Vec2{-s * v.Y, s * v.X}
}

// LengthSq returns the squared length of this vector.
func (v Vec2) LengthSq() float64 {

	return v.X*v.X + v.Y*v.Y
}

// Length returns the length of this vector.
func (v Vec2) Length() float64 {

	return math.Sqrt(v.LengthSq())
}

// Normalize scales this vector to unit length and returns the pointer to
// this updated vector. The zero vector is left unchanged.
func (v *Vec2) Normalize() *Vec2 {

	length := v.Length()
	if length < 1e-12 {
		return v
	}
	return v.MultiplyScalar(1 / length)
}

// Perp returns the vector rotated 90 degrees counter-clockwise (the left
// perpendicular), useful as a tangent direction for a contact normal.
func (v Vec2) Perp() Vec2 {

	return Vec2{-v.Y, v.X}
}

// Lerp linearly interpolates this vector toward other by alpha and
// returns the pointer to this updated vector.
func (v *Vec2) Lerp(other Vec2, alpha float64) *Vec2 {

	v.X += (other.X - v.X) * alpha
	v.Y += (other.Y - v.Y) * alpha
	return v
}

// DistanceTo returns the distance between this vector and other.
func (v Vec2) DistanceTo(other Vec2) float64 {

	return math.Sqrt(v.DistanceToSquared(other))
}

// DistanceToSquared returns the squared distance between this vector and
// other.
func (v Vec2) DistanceToSquared(other Vec2) float64 {

	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}

// Equals returns true if this vector and other have identical components.
func (v Vec2) Equals(other Vec2) bool {

	return v.X == other.X && v.Y == other.Y
}

// IsFinite returns false if either component is NaN or Inf, matching the
// "invalid-argument" error kind's input check.
func (v Vec2) IsFinite() bool {

	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Add2 returns a+b without mutating either operand.
func Add2(a, b Vec2) Vec2 {

	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub2 returns a-b without mutating either operand.
func Sub2(a, b Vec2) Vec2 {

	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale2 returns v*s without mutating v.
func Scale2(v Vec2, s float64) Vec2 {

	return Vec2{v.X * s, v.Y * s}
}

// Neg2 returns -v without mutating v.
func Neg2(v Vec2) Vec2 {

	return Vec2{-v.X, -v.Y}
}

// Normalize2 returns v scaled to unit length without mutating v. The
// zero vector is returned unchanged.
func Normalize2(v Vec2) Vec2 {

	length := v.Length()
	if length < 1e-12 {
		return v
	}
	return Scale2(v, 1/length)
}

// Perp2 returns v rotated 90 degrees counter-clockwise without mutating
// v.
func Perp2(v Vec2) Vec2 {

	return Vec2{-v.Y, v.X}
}

// Lerp2 returns the linear interpolation of a toward b by alpha without
// mutating either operand.
func Lerp2(a, b Vec2, alpha float64) Vec2 {

	return Vec2{a.X + (b.X-a.X)*alpha, a.Y + (b.Y-a.Y)*alpha}
}

// Dot returns the dot product of a and b, as a free function for call
// sites that would otherwise need a temporary to call the method form.
func Dot(a, b Vec2) float64 {

	return a.X*b.X + a.Y*b.Y
}
