// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math2d

// AABB is an axis-aligned bounding box, the currency of the broad-phase
// (spec §4.3). Modeled after math32.Box2's Min/Max shape.
type AABB struct {
	Min Vec2
	Max Vec2
}

// EmptyAABB returns an AABB that contains no points (Min > Max), the
// correct starting point for repeated ExpandByPoint/Union calls.
func EmptyAABB() AABB {

	return AABB{
		Min: Vec2{X: math64Inf, Y: math64Inf},
		Max: Vec2{X: -math64Inf, Y: -math64Inf},
	}
}

const math64Inf = 1e30

// Union returns the smallest AABB containing both a and b.
func Union(a, b AABB) AABB {

	return AABB{
		Min: Vec2{X: minF(a.Min.X, b.Min.X), Y: minF(a.Min.Y, b.Min.Y)},
		Max: Vec2{X: maxF(a.Max.X, b.Max.X), Y: maxF(a.Max.Y, b.Max.Y)},
	}
}

// Contains returns true if inner is entirely contained in a.
func (a AABB) Contains(inner AABB) bool {

	return a.Min.X <= inner.Min.X && a.Min.Y <= inner.Min.Y &&
		inner.Max.X <= a.Max.X && inner.Max.Y <= a.Max.Y
}

// Overlaps returns true if a and b overlap (touching edges count as
// overlapping).
func (a AABB) Overlaps(b AABB) bool {

	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

// Extend returns a copy of a grown by margin on every side, used by the
// broad-phase to give a proxy's fattened AABB slack against small moves.
func (a AABB) Extend(margin float64) AABB {

	return AABB{
		Min: Vec2{X: a.Min.X - margin, Y: a.Min.Y - margin},
		Max: Vec2{X: a.Max.X + margin, Y: a.Max.Y + margin},
	}
}

// Perimeter returns the perimeter of the box (the 2D surface-area
// heuristic cost). physics/broadphase's flat proxy map does not call it.
func (a AABB) Perimeter() float64 {

	wx := a.Max.X - a.Min.X
	wy := a.Max.Y - a.Min.Y
	return 2 * (wx + wy)
}

// Center returns the AABB's center point.
func (a AABB) Center() Vec2 {

	return Vec2{X: 0.5 * (a.Min.X + a.Max.X), Y: 0.5 * (a.Min.Y + a.Max.Y)}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
