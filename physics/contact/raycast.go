// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
)

// RayCastInput is a ray from Origin along Translation (not necessarily
// unit length; its length is the maximum cast distance). MaxFraction
// clips the cast to the first fraction-of-Translation hit, the way a
// shapeCast re-running against a shorter remaining segment needs.
type RayCastInput struct {
	Origin       math2d.Vec2
	Translation  math2d.Vec2
	MaxFraction  float64
}

// RayCastOutput is the nearest hit along a RayCastInput, or Hit == false
// if the ray never touches the shape inside [0, MaxFraction].
type RayCastOutput struct {
	Hit      bool
	Fraction float64
	Point    math2d.Vec2
	Normal   math2d.Vec2
}

// rayCastFunc casts a local-frame ray (xf already applied by the caller
// transforming input into the shape's local frame is NOT how this is
// done here — these take the ray in world space plus the shape's world
// transform, matching Collide's own (geometry, transform) convention so
// callers never juggle two frames).
type rayCastFunc func(in RayCastInput, geom interface{}, xf math2d.Transform2) RayCastOutput

// rayRegistry is the ray-vs-shape counterpart of the manifold registry
// above (spec §9 Design Notes: "ray/shape-cast functions dispatched
// through the same registry used for manifolds"). Grounded on gazed-vu's
// caster.go `rayCastAlgorithms map[int]cast` — a dispatch table keyed by
// shape kind rather than a type switch — generalized from that package's
// plane/sphere pair to this engine's circle/segment/capsule/polygon set.
var rayRegistry [numRayCastKinds]rayCastFunc

const numRayCastKinds = 5

func init() {
	rayRegistry[0] = castRayCircle
	rayRegistry[1] = castRaySegment
	rayRegistry[2] = castRayCapsule
	rayRegistry[3] = castRayPolygon
	rayRegistry[4] = castRayChainSegment
}

// RayCast dispatches in against geom (one of the object.*Geometry types)
// at world transform xf, the narrow-phase collaborator spec §6's
// `rayCast` visitor needs per shape.
func RayCast(in RayCastInput, geom interface{}, xf math2d.Transform2) RayCastOutput {

	var kind int
	switch geom.(type) {
	case circleGeom:
		kind = 0
	case segmentGeom:
		kind = 1
	case capsuleGeom:
		kind = 2
	case polygonGeom:
		kind = 3
	case chainSegmentGeom:
		kind = 4
	default:
		return RayCastOutput{}
	}
	return rayRegistry[kind](in, geom, xf)
}

// The narrow geometric interfaces below let this file stay independent
// of physics/object's concrete Geometry structs (avoiding an import
// cycle risk with callers that already import both); World's query
// layer adapts object.Geometry values to these via small wrapper
// literals at the call site.
type circleGeom struct {
	Center math2d.Vec2
	Radius float64
}
type segmentGeom struct {
	Point1, Point2 math2d.Vec2
}
type capsuleGeom struct {
	Point1, Point2 math2d.Vec2
	Radius         float64
}
type polygonGeom struct {
	Vertices []math2d.Vec2
	Normals  []math2d.Vec2
	Radius   float64
}
type chainSegmentGeom struct {
	Point1, Point2 math2d.Vec2
}

// FromCircle, FromSegment, FromCapsule, FromPolygon and FromChainSegment
// adapt physics/object's Geometry fields into the narrow shape this
// file's dispatch table understands, one constructor per ShapeType so a
// caller (world's query layer) never has to know this package's internal
// numbering.
func FromCircle(center math2d.Vec2, radius float64) interface{} {
	return circleGeom{Center: center, Radius: radius}
}

func FromSegment(p1, p2 math2d.Vec2) interface{} {
	return segmentGeom{Point1: p1, Point2: p2}
}

func FromCapsule(p1, p2 math2d.Vec2, radius float64) interface{} {
	return capsuleGeom{Point1: p1, Point2: p2, Radius: radius}
}

func FromPolygon(vertices, normals []math2d.Vec2, radius float64) interface{} {
	return polygonGeom{Vertices: vertices, Normals: normals, Radius: radius}
}

func FromChainSegment(p1, p2 math2d.Vec2) interface{} {
	return chainSegmentGeom{Point1: p1, Point2: p2}
}

// castRayCircle: http://www.scratchapixel.com ray-sphere intersection,
// specialized to 2D — grounded on gazed-vu's castRaySphere shape
// (project the center onto the ray, test the perpendicular distance
// against the radius, solve the remaining quadratic for the near root).
func castRayCircle(in RayCastInput, geomv interface{}, xf math2d.Transform2) RayCastOutput {

	g := geomv.(circleGeom)
	center := math2d.TransformPoint(xf, g.Center)

	s := math2d.Sub2(in.Origin, center)
	length := in.Translation.Length()
	if length < 1e-12 {
		return RayCastOutput{}
	}
	d := math2d.Scale2(in.Translation, 1/length)

	b := math2d.Dot(s, s) - g.Radius*g.Radius
	rayLen := length * in.MaxFraction
	c := math2d.Dot(s, d)
	sigma := c*c - b
	if sigma < 0 || rayLen < 1e-12 {
		return RayCastOutput{}
	}
	t := -c - math.Sqrt(sigma)
	if t < 0 || t > rayLen {
		return RayCastOutput{}
	}

	point := math2d.Add2(in.Origin, math2d.Scale2(d, t))
	normal := math2d.Normalize2(math2d.Sub2(point, center))
	return RayCastOutput{Hit: true, Fraction: t / length, Point: point, Normal: normal}
}

// castRaySegment solves the ray/segment linear system directly (two
// lines, each parameterized by its own scalar, solved for both at once)
// rather than gazed-vu's plane-intersection formula, since a 2D segment
// has no surface to treat as an infinite plane.
func castRaySegment(in RayCastInput, geomv interface{}, xf math2d.Transform2) RayCastOutput {

	g := geomv.(segmentGeom)
	p1 := math2d.TransformPoint(xf, g.Point1)
	p2 := math2d.TransformPoint(xf, g.Point2)
	return castRaySegmentPoints(in, p1, p2)
}

func castRaySegmentPoints(in RayCastInput, p1, p2 math2d.Vec2) RayCastOutput {

	d := in.Translation
	e := math2d.Sub2(p2, p1)
	eLen := e.Length()
	if eLen < 1e-12 {
		return RayCastOutput{}
	}
	normal := math2d.Perp2(math2d.Scale2(e, 1/eLen))

	denom := math2d.Dot(d, normal)
	if math.Abs(denom) < 1e-12 {
		return RayCastOutput{}
	}

	t := math2d.Dot(math2d.Sub2(p1, in.Origin), normal) / denom
	if t < 0 || t > in.MaxFraction {
		return RayCastOutput{}
	}

	point := math2d.Add2(in.Origin, math2d.Scale2(d, t))
	s := math2d.Dot(math2d.Sub2(point, p1), e) / (eLen * eLen)
	if s < 0 || s > 1 {
		return RayCastOutput{}
	}

	if denom > 0 {
		normal = math2d.Neg2(normal)
	}
	return RayCastOutput{Hit: true, Fraction: t, Point: point, Normal: normal}
}

func castRayChainSegment(in RayCastInput, geomv interface{}, xf math2d.Transform2) RayCastOutput {

	g := geomv.(chainSegmentGeom)
	p1 := math2d.TransformPoint(xf, g.Point1)
	p2 := math2d.TransformPoint(xf, g.Point2)
	return castRaySegmentPoints(in, p1, p2)
}

// castRayCapsule tests the ray against the capsule's core segment offset
// by Radius on each side, reusing castRaySegmentPoints for the two rails
// and castRayCircle for the rounded caps, keeping the closest hit.
func castRayCapsule(in RayCastInput, geomv interface{}, xf math2d.Transform2) RayCastOutput {

	g := geomv.(capsuleGeom)
	p1 := math2d.TransformPoint(xf, g.Point1)
	p2 := math2d.TransformPoint(xf, g.Point2)

	best := RayCastOutput{}
	consider := func(out RayCastOutput) {
		if out.Hit && (!best.Hit || out.Fraction < best.Fraction) {
			best = out
		}
	}

	axis := math2d.Sub2(p2, p1)
	axisLen := axis.Length()
	if axisLen > 1e-12 {
		perp := math2d.Scale2(math2d.Normalize2(math2d.Perp2(axis)), g.Radius)
		consider(castRaySegmentPoints(in, math2d.Add2(p1, perp), math2d.Add2(p2, perp)))
		consider(castRaySegmentPoints(in, math2d.Sub2(p1, perp), math2d.Sub2(p2, perp)))
	}
	consider(castRayCircle(in, circleGeom{Center: math2d.Vec2{}, Radius: g.Radius}, math2d.Transform2{P: p1, Q: math2d.IdentityRot}))
	consider(castRayCircle(in, circleGeom{Center: math2d.Vec2{}, Radius: g.Radius}, math2d.Transform2{P: p2, Q: math2d.IdentityRot}))
	return best
}

// castRayPolygon clips the ray against every edge's half-plane in turn
// (the standard slab/half-space walk), keeping the tightest [tLow,
// tHigh] bracket and the last entering edge's normal as the hit normal.
func castRayPolygon(in RayCastInput, geomv interface{}, xf math2d.Transform2) RayCastOutput {

	g := geomv.(polygonGeom)

	origin := math2d.InvTransformPoint(xf, in.Origin)
	d := math2d.InvRotateVec(xf.Q, in.Translation)

	lower, upper := 0.0, in.MaxFraction
	index := -1

	for i, v := range g.Vertices {
		n := g.Normals[i]
		numerator := math2d.Dot(n, math2d.Sub2(v, origin)) + g.Radius
		denominator := math2d.Dot(n, d)

		if denominator == 0 {
			if numerator < 0 {
				return RayCastOutput{}
			}
			continue
		}
		t := numerator / denominator
		if denominator < 0 && t > lower {
			lower = t
			index = i
		} else if denominator > 0 && t < upper {
			upper = t
		}
		if upper < lower {
			return RayCastOutput{}
		}
	}

	if index < 0 {
		return RayCastOutput{}
	}

	localPoint := math2d.Add2(origin, math2d.Scale2(d, lower))
	point := math2d.TransformPoint(xf, localPoint)
	normal := math2d.RotateVec(xf.Q, g.Normals[index])
	return RayCastOutput{Hit: true, Fraction: lower, Point: point, Normal: normal}
}
