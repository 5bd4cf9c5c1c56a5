// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// ShapeType enumerates the narrow-phase geometry kinds the manifold
// registry (spec §9, "Registry of manifold functions") dispatches on.
// The narrow-phase routines themselves are an external collaborator
// (spec §1 Scope) — ShapeType only needs to name the kinds, not their
// geometry.
type ShapeType int

const (
	Circle ShapeType = iota
	Capsule
	Polygon
	Segment
	ChainSegment
	numShapeTypes
)

func (t ShapeType) String() string {

	switch t {
	case Circle:
		return "circle"
	case Capsule:
		return "capsule"
	case Polygon:
		return "polygon"
	case Segment:
		return "segment"
	case ChainSegment:
		return "chainSegment"
	default:
		return "unknown"
	}
}

// NumShapeTypes is the dimension of the manifold-function registry's 5x5
// table (spec §4.4 step 1, §9).
const NumShapeTypes = int(numShapeTypes)

// Geometry is any of the narrow-phase collaborator's shape payloads; the
// core only ever passes it through to the registered manifold function,
// never interprets it.
type Geometry interface {
	Type() ShapeType
	// LocalBounds returns the shape's AABB in its own local frame, which
	// the broad-phase proxy update transforms into world space.
	LocalBounds() math2d.AABB
}

// CircleGeometry is a circle of Radius centered at Center (body-local).
type CircleGeometry struct {
	Center math2d.Vec2
	Radius float64
}

func (c CircleGeometry) Type() ShapeType { return Circle }

func (c CircleGeometry) LocalBounds() math2d.AABB {

	return math2d.AABB{
		Min: math2d.Vec2{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		Max: math2d.Vec2{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

// CapsuleGeometry is the Minkowski sum of a segment (Point1,Point2) and a
// disc of Radius.
type CapsuleGeometry struct {
	Point1, Point2 math2d.Vec2
	Radius         float64
}

func (c CapsuleGeometry) Type() ShapeType { return Capsule }

func (c CapsuleGeometry) LocalBounds() math2d.AABB {

	b := math2d.EmptyAABB()
	for _, p := range []math2d.Vec2{c.Point1, c.Point2} {
		b = math2d.Union(b, math2d.AABB{
			Min: math2d.Vec2{X: p.X - c.Radius, Y: p.Y - c.Radius},
			Max: math2d.Vec2{X: p.X + c.Radius, Y: p.Y + c.Radius},
		})
	}
	return b
}

// PolygonGeometry is a convex polygon given by Vertices (CCW winding) and
// their outward unit Normals, with an optional Radius for a rounded
// (capsule-like) skin.
type PolygonGeometry struct {
	Vertices []math2d.Vec2
	Normals  []math2d.Vec2
	Centroid math2d.Vec2
	Radius   float64
}

func (p PolygonGeometry) Type() ShapeType { return Polygon }

func (p PolygonGeometry) LocalBounds() math2d.AABB {

	b := math2d.EmptyAABB()
	for _, v := range p.Vertices {
		b = math2d.Union(b, math2d.AABB{
			Min: math2d.Vec2{X: v.X - p.Radius, Y: v.Y - p.Radius},
			Max: math2d.Vec2{X: v.X + p.Radius, Y: v.Y + p.Radius},
		})
	}
	return b
}

// SegmentGeometry is a single static line segment, typically used for
// level geometry (spec end-to-end scenario 1, "segment at y=0").
type SegmentGeometry struct {
	Point1, Point2 math2d.Vec2
}

func (s SegmentGeometry) Type() ShapeType { return Segment }

func (s SegmentGeometry) LocalBounds() math2d.AABB {

	return math2d.Union(
		math2d.AABB{Min: s.Point1, Max: s.Point1},
		math2d.AABB{Min: s.Point2, Max: s.Point2},
	)
}

// ChainSegmentGeometry is one link of a chain loop (spec end-to-end
// scenario 5, "ghost bumps"): it carries its neighbor points Ghost1 and
// Ghost2. physics/contact registers no manifold function for chain
// segments, so no narrow phase reads these neighbors.
type ChainSegmentGeometry struct {
	Ghost1, Point1, Point2, Ghost2 math2d.Vec2
}

func (c ChainSegmentGeometry) Type() ShapeType { return ChainSegment }

func (c ChainSegmentGeometry) LocalBounds() math2d.AABB {

	return math2d.Union(
		math2d.AABB{Min: c.Point1, Max: c.Point1},
		math2d.AABB{Min: c.Point2, Max: c.Point2},
	)
}

// Material holds the per-shape surface properties §3 names: friction,
// restitution, rolling resistance and conveyor-belt tangent speed. The
// userMaterialId lets frictionCallback/restitutionCallback (spec §6)
// key off an application-defined material table instead of raw floats.
type Material struct {
	Friction          float64
	Restitution       float64
	RollingResistance float64
	TangentSpeed      float64
	UserMaterialId    int32
}

// DefaultMaterial matches common 2D engine defaults (moderate friction,
// no bounce).
var DefaultMaterial = Material{Friction: 0.6, Restitution: 0, RollingResistance: 0}

// Filter is the category/mask/group triple spec §6 "Filtering" describes.
type Filter struct {
	CategoryBits uint64
	MaskBits     uint64
	GroupIndex   int32
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 1, MaskBits: ^uint64(0), GroupIndex: 0}

// ShouldCollide implements spec §6's filtering rule.
func (f Filter) ShouldCollide(other Filter) bool {

	if f.GroupIndex == other.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.CategoryBits&other.MaskBits != 0 && other.CategoryBits&f.MaskBits != 0
}

// ShapeFlags are the per-shape event opt-ins from spec §3.
type ShapeFlags struct {
	EnableContactEvents  bool
	EnableHitEvents      bool
	EnablePreSolveEvents bool
	// SensorIndex, if non-zero, marks this shape as a sensor: it
	// participates in broad-phase and touching detection but never enters
	// the constraint graph (spec §3 data model; sensor semantics
	// supplemented in SPEC_FULL.md from the rest of the retrieval pack
	// since spec.md itself only names the field).
	SensorIndex int32
}

// Shape is owned by exactly one body (spec §3 "Shape").
type Shape struct {
	Id     idpool.Handle
	BodyId idpool.Handle

	Geometry Geometry
	Material Material
	Filter   Filter
	Flags    ShapeFlags

	// Intrusive edge-list link for the body's shape list.
	NextShapeId idpool.Handle

	// FatAABB is the broad-phase proxy's current (fattened) bounds.
	FatAABB math2d.AABB
}
