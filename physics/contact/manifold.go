// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package contact implements the contact lifecycle (spec §4.4) and the
// manifold-function registry (spec §9 "Registry of manifold functions")
// it dispatches through. The actual narrow-phase geometry tests are, per
// spec §1, an external collaborator; the registry below is real and
// complete for the shape pairs a 2D engine sees most (circle/segment/
// polygon), grounded on the teacher's FindPenetrationAxis/ClipAgainstHull
// pair in physics/narrowphase.go, generalized from its single
// convex-convex path into the dispatch table the spec names.
package contact

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/object"
)

// MaxManifoldPoints bounds a manifold to two points, the most a 2D convex
// pair can produce (an edge-edge clip).
const MaxManifoldPoints = 2

// ManifoldPoint is one contact point, carrying the warm-start id spec
// §4.8 "Narrow-Phase Per-Step Refresh" matches impulses by.
type ManifoldPoint struct {
	// Id identifies this point across steps (e.g. vertex index or
	// edge/vertex feature pair) so warm-start impulses carry over.
	Id int32

	// Point is the world-space contact point (on the reference
	// surface, at the midpoint of the clipped overlap).
	Point math2d.Vec2

	// Separation is negative when penetrating, positive when the pair
	// is only a speculative (not-yet-touching) contact (spec §4.8).
	Separation float64

	// AnchorA, AnchorB are the contact point expressed relative to
	// each body's center of mass, computed once at prepare time.
	AnchorA, AnchorB math2d.Vec2

	NormalImpulse       float64
	TangentImpulse      float64
	MaxNormalImpulse    float64
	RelativeVelocity    float64 // normal velocity at first touch, for restitution
}

// Manifold is the narrow-phase result for one shape pair: a shared
// Normal (from A to B) and up to MaxManifoldPoints contact points.
type Manifold struct {
	Normal math2d.Vec2
	Points []ManifoldPoint
}

// Func computes the manifold between shape A (in its own local frame,
// transform xfA) and shape B (transform xfB). Implementations must
// express the result in world space with Normal pointing from A to B.
type Func func(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold

// registry is the [NumShapeTypes][NumShapeTypes] dispatch table spec §9
// describes: entry [i][j] handles (typeI, typeJ) in that primary order;
// pairs registered only in one triangle are resolved by swapping
// arguments and the resulting normal at call time (see Collide).
var registry [object.NumShapeTypes][object.NumShapeTypes]Func

func register(a, b object.ShapeType, fn Func) {
	registry[a][b] = fn
}

func init() {
	register(object.Circle, object.Circle, collideCircles)
	register(object.Circle, object.Segment, collideCircleSegment)
	register(object.Circle, object.Capsule, collideCircleCapsule)
	register(object.Circle, object.Polygon, collideCirclePolygon)
	register(object.Polygon, object.Polygon, collidePolygons)
	register(object.Segment, object.Polygon, collideSegmentPolygon)
	register(object.Capsule, object.Capsule, collideCapsules)
	register(object.Segment, object.Circle, nil) // resolved via swap, see Collide
}

// SpeculativeDistance bounds how far apart (positive separation) a pair
// can be and still produce a manifold point: the box2d-family constant
// is 4*linearSlop (not itself present in the retrieval pack's
// original_source/ files, which only quote the 1.5*linearSlop trimming
// threshold; this is the standard value every box2d-derived engine
// uses it for). A point past this margin is dropped here rather than
// per manifold function, so every entry in the registry gets the same
// "only speculative-distance-or-closer points are touching" guarantee
// Refresh's touching rule (spec §4.8) relies on.
const SpeculativeDistance = 4 * linearSlop

// Collide looks up and runs the manifold function for the pair (a, b),
// trying the (typeA, typeB) slot and falling back to the (typeB, typeA)
// slot with arguments swapped and the resulting normal negated, the
// "primary orientation swap" spec §9 names. The result is trimmed to
// points within SpeculativeDistance before returning.
func Collide(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) (Manifold, bool) {

	ta, tb := a.Type(), b.Type()
	var m Manifold
	switch {
	case registry[ta][tb] != nil:
		m = registry[ta][tb](a, xfA, b, xfB)
	case registry[tb][ta] != nil:
		m = registry[tb][ta](b, xfB, a, xfA)
		m.Normal = math2d.Neg2(m.Normal)
	default:
		return Manifold{}, false
	}
	m.Points = trimToSpeculativeMargin(m.Points)
	return m, true
}

// trimToSpeculativeMargin drops any point separated by more than
// SpeculativeDistance, reusing the input slice's backing array.
func trimToSpeculativeMargin(points []ManifoldPoint) []ManifoldPoint {

	out := points[:0]
	for _, p := range points {
		if p.Separation <= SpeculativeDistance {
			out = append(out, p)
		}
	}
	return out
}

func collideCircles(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	ca := a.(object.CircleGeometry)
	cb := b.(object.CircleGeometry)

	pa := math2d.TransformPoint(xfA, ca.Center)
	pb := math2d.TransformPoint(xfB, cb.Center)

	d := math2d.Sub2(pb, pa)
	dist := d.Length()
	radiusSum := ca.Radius + cb.Radius

	normal := math2d.Vec2{X: 1, Y: 0}
	if dist > 1e-9 {
		normal = math2d.Scale2(d, 1/dist)
	}

	point := math2d.Add2(pa, math2d.Scale2(normal, ca.Radius))

	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{
			Id:         0,
			Point:      point,
			Separation: dist - radiusSum,
		}},
	}
}

func collideCircleSegment(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	c := a.(object.CircleGeometry)
	s := b.(object.SegmentGeometry)

	p := math2d.TransformPoint(xfA, c.Center)
	p1 := math2d.TransformPoint(xfB, s.Point1)
	p2 := math2d.TransformPoint(xfB, s.Point2)

	closest, _ := closestPointOnSegment(p, p1, p2)
	d := math2d.Sub2(closest, p) // A (circle) toward B (segment)
	dist := d.Length()

	normal := math2d.Vec2{X: 0, Y: 1}
	if dist > 1e-9 {
		normal = math2d.Scale2(d, 1/dist)
	}

	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{
			Id:         0,
			Point:      closest,
			Separation: dist - c.Radius,
		}},
	}
}

func collideCircleCapsule(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	c := a.(object.CircleGeometry)
	cap := b.(object.CapsuleGeometry)

	p := math2d.TransformPoint(xfA, c.Center)
	p1 := math2d.TransformPoint(xfB, cap.Point1)
	p2 := math2d.TransformPoint(xfB, cap.Point2)

	closest, _ := closestPointOnSegment(p, p1, p2)
	d := math2d.Sub2(closest, p) // A (circle) toward B (capsule)
	dist := d.Length()
	radiusSum := c.Radius + cap.Radius

	normal := math2d.Vec2{X: 0, Y: 1}
	if dist > 1e-9 {
		normal = math2d.Scale2(d, 1/dist)
	}
	point := math2d.Sub2(closest, math2d.Scale2(normal, cap.Radius))

	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{
			Id:         0,
			Point:      point,
			Separation: dist - radiusSum,
		}},
	}
}

func collideCapsules(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	ca := a.(object.CapsuleGeometry)
	cb := b.(object.CapsuleGeometry)

	a1 := math2d.TransformPoint(xfA, ca.Point1)
	a2 := math2d.TransformPoint(xfA, ca.Point2)
	b1 := math2d.TransformPoint(xfB, cb.Point1)
	b2 := math2d.TransformPoint(xfB, cb.Point2)

	pa, pb := closestPointsBetweenSegments(a1, a2, b1, b2)
	d := math2d.Sub2(pb, pa)
	dist := d.Length()
	radiusSum := ca.Radius + cb.Radius

	normal := math2d.Vec2{X: 0, Y: 1}
	if dist > 1e-9 {
		normal = math2d.Scale2(d, 1/dist)
	}
	point := math2d.Add2(pa, math2d.Scale2(normal, ca.Radius))

	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{
			Id:         0,
			Point:      point,
			Separation: dist - radiusSum,
		}},
	}
}

func collideCirclePolygon(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	c := a.(object.CircleGeometry)
	poly := b.(object.PolygonGeometry)

	center := math2d.TransformPoint(xfA, c.Center)
	localCenter := math2d.InvTransformPoint(xfB, center)

	// Find the edge with maximum separation (FindPenetrationAxis's
	// single-body special case in the teacher's narrowphase.go).
	separation := -math.MaxFloat64
	edgeIndex := 0
	for i, n := range poly.Normals {
		s := math2d.Dot(n, math2d.Sub2(localCenter, poly.Vertices[i]))
		if s > separation {
			separation = s
			edgeIndex = i
		}
	}

	v1 := poly.Vertices[edgeIndex]
	v2 := poly.Vertices[(edgeIndex+1)%len(poly.Vertices)]

	var localNormal, localPoint math2d.Vec2
	if separation < 1e-9 {
		localNormal = poly.Normals[edgeIndex]
		localPoint = math2d.Lerp2(v1, v2, 0.5)
	} else {
		closest, _ := closestPointOnSegment(localCenter, v1, v2)
		d := math2d.Sub2(localCenter, closest)
		if d.Length() < 1e-9 {
			localNormal = poly.Normals[edgeIndex]
		} else {
			localNormal = math2d.Scale2(d, 1/d.Length())
		}
		localPoint = closest
	}

	// localNormal as built above points outward from the polygon (B)
	// toward the circle (A); negate so Normal follows the A-to-B
	// convention every other manifold function here uses.
	normal := math2d.Neg2(math2d.TransformVector(xfB, localNormal))
	point := math2d.TransformPoint(xfB, localPoint)
	dist := math2d.Dot(math2d.Sub2(point, center), normal)

	return Manifold{
		Normal: normal,
		Points: []ManifoldPoint{{
			Id:         int32(edgeIndex),
			Point:      math2d.Add2(center, math2d.Scale2(normal, c.Radius)),
			Separation: dist - c.Radius,
		}},
	}
}

// collideSegmentPolygon and collidePolygons both reduce to a one-sided
// separating-axis search followed by a Sutherland-Hodgman style clip of
// the incident edge against the reference edge's side planes — the
// generalization of the teacher's FindPenetrationAxis + ClipAgainstHull
// pair to an explicit reference/incident edge instead of its bodyA/bodyB
// special case.
func collidePolygons(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	pa := a.(object.PolygonGeometry)
	pb := b.(object.PolygonGeometry)
	return clipPolygons(pa, xfA, pb, xfB)
}

func collideSegmentPolygon(a object.Geometry, xfA math2d.Transform2, b object.Geometry, xfB math2d.Transform2) Manifold {

	s := a.(object.SegmentGeometry)
	poly := b.(object.PolygonGeometry)

	seg := object.PolygonGeometry{
		Vertices: []math2d.Vec2{s.Point1, s.Point2},
		Normals: []math2d.Vec2{
			math2d.Normalize2(math2d.Perp2(math2d.Sub2(s.Point2, s.Point1))),
			math2d.Normalize2(math2d.Perp2(math2d.Sub2(s.Point1, s.Point2))),
		},
	}
	return clipPolygons(seg, xfA, poly, xfB)
}

func clipPolygons(pa object.PolygonGeometry, xfA math2d.Transform2, pb object.PolygonGeometry, xfB math2d.Transform2) Manifold {

	edgeA, sepA := maxSeparatingEdge(pa, xfA, pb, xfB)
	edgeB, sepB := maxSeparatingEdge(pb, xfB, pa, xfA)

	var ref, inc object.PolygonGeometry
	var xfRef, xfInc math2d.Transform2
	var refEdge int
	var flip bool

	if sepB > sepA+1e-4 {
		ref, xfRef, refEdge = pb, xfB, edgeB
		inc, xfInc = pa, xfA
		flip = true
	} else {
		ref, xfRef, refEdge = pa, xfA, edgeA
		inc, xfInc = pb, xfB
		flip = false
	}

	refNormal := math2d.TransformVector(xfRef, ref.Normals[refEdge])

	// Find the incident edge: the one whose normal is most anti-parallel
	// to refNormal.
	incEdge := 0
	best := math.MaxFloat64
	for i, n := range inc.Normals {
		worldN := math2d.TransformVector(xfInc, n)
		d := math2d.Dot(worldN, refNormal)
		if d < best {
			best = d
			incEdge = i
		}
	}
	i1 := incEdge
	i2 := (incEdge + 1) % len(inc.Vertices)
	v1 := math2d.TransformPoint(xfInc, inc.Vertices[i1])
	v2 := math2d.TransformPoint(xfInc, inc.Vertices[i2])

	rv1 := math2d.TransformPoint(xfRef, ref.Vertices[refEdge])
	rv2 := math2d.TransformPoint(xfRef, ref.Vertices[(refEdge+1)%len(ref.Vertices)])
	tangent := math2d.Normalize2(math2d.Sub2(rv2, rv1))

	// Clip incident edge to the reference edge's side planes.
	lower1 := -math2d.Dot(tangent, rv1)
	v1, v2, ok1 := clipSegment(v1, v2, math2d.Neg2(tangent), lower1, i1, i2)
	if !ok1 {
		return Manifold{Normal: refNormal}
	}
	upper2 := math2d.Dot(tangent, rv2)
	v1, v2, ok2 := clipSegment(v1, v2, tangent, upper2, i1, i2)
	if !ok2 {
		return Manifold{Normal: refNormal}
	}

	points := make([]ManifoldPoint, 0, 2)
	for idx, v := range [2]math2d.Vec2{v1, v2} {
		sep := math2d.Dot(math2d.Sub2(v, rv1), refNormal)
		if sep <= SpeculativeDistance {
			points = append(points, ManifoldPoint{
				Id:         int32(refEdge*8 + incEdge*2 + idx),
				Point:      v,
				Separation: sep,
			})
		}
	}

	normal := refNormal
	if flip {
		normal = math2d.Neg2(normal)
	}
	return Manifold{Normal: normal, Points: points}
}

func maxSeparatingEdge(ref object.PolygonGeometry, xfRef math2d.Transform2, other object.PolygonGeometry, xfOther math2d.Transform2) (int, float64) {

	best := -math.MaxFloat64
	bestEdge := 0
	for i, n := range ref.Normals {
		worldN := math2d.TransformVector(xfRef, n)
		worldV := math2d.TransformPoint(xfRef, ref.Vertices[i])

		s := math.MaxFloat64
		for _, v := range other.Vertices {
			worldOther := math2d.TransformPoint(xfOther, v)
			d := math2d.Dot(worldN, math2d.Sub2(worldOther, worldV))
			if d < s {
				s = d
			}
		}
		if s > best {
			best = s
			bestEdge = i
		}
	}
	return bestEdge, best
}

// clipSegment clips the segment (v1,v2) against the half-plane
// dot(normal,x) + offset <= 0, returning the clipped endpoints and false
// if the whole segment is clipped away.
func clipSegment(v1, v2, normal math2d.Vec2, offset float64, id1, id2 int) (math2d.Vec2, math2d.Vec2, bool) {

	d1 := math2d.Dot(normal, v1) - offset
	d2 := math2d.Dot(normal, v2) - offset

	switch {
	case d1 <= 0 && d2 <= 0:
		return v1, v2, true
	case d1 <= 0:
		t := d1 / (d1 - d2)
		return v1, math2d.Lerp2(v1, v2, t), true
	case d2 <= 0:
		t := d1 / (d1 - d2)
		return math2d.Lerp2(v1, v2, t), v2, true
	default:
		_ = id1
		_ = id2
		return v1, v2, false
	}
}

func closestPointOnSegment(p, a, b math2d.Vec2) (math2d.Vec2, float64) {

	ab := math2d.Sub2(b, a)
	denom := ab.LengthSq()
	if denom < 1e-12 {
		return a, 0
	}
	t := math2d.Dot(math2d.Sub2(p, a), ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math2d.Add2(a, math2d.Scale2(ab, t)), t
}

func closestPointsBetweenSegments(p1, q1, p2, q2 math2d.Vec2) (math2d.Vec2, math2d.Vec2) {

	// Sample-based fallback is unnecessary for 2D capsules; use the
	// standard closest-point-between-segments construction.
	d1 := math2d.Sub2(q1, p1)
	d2 := math2d.Sub2(q2, p2)
	r := math2d.Sub2(p1, p2)

	a := d1.LengthSq()
	e := d2.LengthSq()
	f := math2d.Dot(d2, r)

	var s, t float64
	if a < 1e-12 && e < 1e-12 {
		return p1, p2
	}
	if a < 1e-12 {
		s = 0
		t = clamp01(f / e)
	} else {
		c := math2d.Dot(d1, r)
		if e < 1e-12 {
			t = 0
			s = clamp01(-c / a)
		} else {
			b := math2d.Dot(d1, d2)
			denom := a*e - b*b
			if denom > 1e-12 {
				s = clamp01((b*f - c*e) / denom)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}

	return math2d.Add2(p1, math2d.Scale2(d1, s)), math2d.Add2(p2, math2d.Scale2(d2, t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
