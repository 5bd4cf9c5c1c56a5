// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math2d

// Mat22 is a 2x2 matrix stored by column, used for the point-to-point
// effective-mass blocks built by joint and contact constraint prepare
// steps (spec §4.9, "2x2 point-to-point mass K").
type Mat22 struct {
	Ex, Ey Vec2 // columns
}

// NewMat22FromCols builds a Mat22 from its two columns.
func NewMat22FromCols(ex, ey Vec2) Mat22 {

	return Mat22{Ex: ex, Ey: ey}
}

// Add returns the sum of two matrices.
func (m Mat22) Add(other Mat22) Mat22 {

	return Mat22{
		Ex: Add2(m.Ex, other.Ex),
		Ey: Add2(m.Ey, other.Ey),
	}
}

// MulVec returns m*v.
func (m Mat22) MulVec(v Vec2) Vec2 {

	return Vec2{
		X: m.Ex.X*v.X + m.Ey.X*v.Y,
		Y: m.Ex.Y*v.X + m.Ey.Y*v.Y,
	}
}

// Determinant returns the matrix determinant.
func (m Mat22) Determinant() float64 {

	return m.Ex.X*m.Ey.Y - m.Ey.X*m.Ex.Y
}

// Solve solves m*x = b for x using the closed-form inverse. If m is
// singular (determinant ~0) it falls back to the zero vector rather than
// dividing by zero; callers (joint/contact prepare) treat a singular
// block as an effective mass of zero, i.e. an unconstrained axis.
func (m Mat22) Solve(b Vec2) Vec2 {

	det := m.Determinant()
	if det != 0 {
		det = 1 / det
	}
	return Vec2{
		X: det * (m.Ey.Y*b.X - m.Ey.X*b.Y),
		Y: det * (m.Ex.X*b.Y - m.Ex.Y*b.X),
	}
}

// Inverse returns the matrix inverse, or the zero matrix if singular.
func (m Mat22) Inverse() Mat22 {

	det := m.Determinant()
	if det != 0 {
		det = 1 / det
	}
	return Mat22{
		Ex: Vec2{det * m.Ey.Y, -det * m.Ex.Y},
		Ey: Vec2{-det * m.Ey.X, det * m.Ex.X},
	}
}
