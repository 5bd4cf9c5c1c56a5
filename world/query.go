// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/event"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
	"github.com/gophysics/kinetic2d/physics/toi"
)

// toRayGeom adapts one of physics/object's Geometry values into the
// narrow shape physics/contact's ray-cast registry understands, the
// conversion spec §9 Design Notes calls for ("ray/shape-cast functions
// dispatched through the same registry used for manifolds").
func toRayGeom(g object.Geometry) interface{} {

	switch v := g.(type) {
	case object.CircleGeometry:
		return contact.FromCircle(v.Center, v.Radius)
	case object.SegmentGeometry:
		return contact.FromSegment(v.Point1, v.Point2)
	case object.CapsuleGeometry:
		return contact.FromCapsule(v.Point1, v.Point2, v.Radius)
	case object.PolygonGeometry:
		return contact.FromPolygon(v.Vertices, v.Normals, v.Radius)
	case object.ChainSegmentGeometry:
		return contact.FromChainSegment(v.Point1, v.Point2)
	default:
		return nil
	}
}

// RayCastHit is one shape a RayCast visit reports, in the owning body's
// world frame.
type RayCastHit struct {
	ShapeId  idpool.Handle
	BodyId   idpool.Handle
	Point    math2d.Vec2
	Normal   math2d.Vec2
	Fraction float64
}

// RayCast visits every shape the segment from origin to
// origin+translation hits, nearest first, stopping early if visit
// returns false — spec §6's `rayCast` query visitor. The broad-phase
// tree's fat-AABB Query (spec §4.3) prunes candidates before the real
// per-shape cast (physics/contact's ray registry) runs on each one.
func (w *World) RayCast(origin, translation math2d.Vec2, visit func(RayCastHit) bool) {

	swept := math2d.Union(
		math2d.AABB{Min: origin, Max: origin},
		math2d.AABB{Min: math2d.Add2(origin, translation), Max: math2d.Add2(origin, translation)},
	)

	var hits []RayCastHit
	w.tree.Query(swept, func(shapeId idpool.Handle) bool {
		s := w.shapes[shapeId]
		if s == nil {
			return true
		}
		b := w.bodies[s.BodyId]
		if b == nil {
			return true
		}
		out := contact.RayCast(contact.RayCastInput{Origin: origin, Translation: translation, MaxFraction: 1}, toRayGeom(s.Geometry), b.Transform)
		if out.Hit {
			hits = append(hits, RayCastHit{ShapeId: shapeId, BodyId: s.BodyId, Point: out.Point, Normal: out.Normal, Fraction: out.Fraction})
		}
		return true
	})

	sortRayCastHits(hits)
	for _, h := range hits {
		if !visit(h) {
			return
		}
	}
}

func sortRayCastHits(hits []RayCastHit) {

	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Fraction < hits[j-1].Fraction; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// OverlapAABB visits every shape whose fat broad-phase AABB overlaps
// aabb, stopping early if visit returns false — spec §6's `overlapAabb`
// query visitor. Unlike OverlapShape this is a broad-phase-only test: a
// hit means "might touch", not "does touch".
func (w *World) OverlapAABB(aabb math2d.AABB, visit func(idpool.Handle) bool) {

	w.tree.Query(aabb, visit)
}

// OverlapShape visits every shape that narrow-phase-overlaps geom at
// world transform xf (non-positive minimum manifold separation), spec
// §6's `overlapShape` query visitor. It uses the same broad-phase fat
// AABB to prune candidates before running physics/contact's manifold
// registry (Collide) as the real test, the same oracle C8's narrow-phase
// refresh uses for touching contacts.
func (w *World) OverlapShape(geom object.Geometry, xf math2d.Transform2, visit func(idpool.Handle) bool) {

	queryAABB := math2d.TransformAABB(xf, geom.LocalBounds())

	w.tree.Query(queryAABB, func(shapeId idpool.Handle) bool {
		s := w.shapes[shapeId]
		if s == nil {
			return true
		}
		b := w.bodies[s.BodyId]
		if b == nil {
			return true
		}
		m, ok := contact.Collide(geom, xf, s.Geometry, b.Transform)
		if !ok {
			return true
		}
		for _, p := range m.Points {
			if p.Separation <= 0 {
				return visit(shapeId)
			}
		}
		return true
	})
}

// ShapeCastHit is one shape a ShapeCast sweep reports.
type ShapeCastHit struct {
	ShapeId idpool.Handle
	BodyId  idpool.Handle
	T       float64
	Normal  math2d.Vec2
}

// ShapeCast sweeps geom from origin along translation (geom's own pivot
// moving rigidly, with no rotation over the sweep) and visits every
// broad-phase candidate it comes within tolerance of before reaching
// t=1, nearest first — spec §6's `shapeCast` query visitor. It reuses
// physics/toi's bilateral-advancement root-finder (Sweep) as the
// per-candidate moving/static TOI test, the same routine C10 uses for a
// bullet body's continuous-collision clamp, rather than a second
// distance implementation.
func (w *World) ShapeCast(geom object.Geometry, origin math2d.Vec2, rotation math2d.Rot, translation math2d.Vec2, visit func(ShapeCastHit) bool) {

	movingSweep := math2d.Sweep{
		LocalCenter: math2d.Vec2{},
		C1:          origin,
		C2:          math2d.Add2(origin, translation),
		Q1:          rotation,
		Q2:          rotation,
	}

	queryAABB := toi.SweepAABB(movingSweep, geom)

	var hits []ShapeCastHit
	w.tree.Query(queryAABB, func(shapeId idpool.Handle) bool {
		s := w.shapes[shapeId]
		if s == nil {
			return true
		}
		b := w.bodies[s.BodyId]
		if b == nil {
			return true
		}
		staticSweep := math2d.Sweep{LocalCenter: math2d.Vec2{}, C1: b.Transform.P, C2: b.Transform.P, Q1: b.Transform.Q, Q2: b.Transform.Q}
		r := toi.Sweep(movingSweep, staticSweep, geom, s.Geometry)
		if r.Hit {
			hits = append(hits, ShapeCastHit{ShapeId: shapeId, BodyId: s.BodyId, T: r.T, Normal: r.Normal})
		}
		return true
	})

	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	for _, h := range hits {
		if !visit(h) {
			return
		}
	}
}

// GetContactEvents returns the prior step's stable contact begin/end/hit
// queues (spec §4.12, §6's event-drain accessors). Calling this during a
// step (inStep) still returns last step's stable arrays; the in-progress
// step's own events are not visible until after Step returns and Flip
// has run.
func (w *World) GetContactEvents() (begin []event.ContactBeginTouchEvent, end []event.ContactEndTouchEvent, hit []event.ContactHitEvent) {

	return w.queues.ContactBegin.Stable(), w.queues.ContactEnd.Stable(), w.queues.ContactHit.Stable()
}

// GetSensorEvents returns the prior step's stable sensor begin/end
// queues.
func (w *World) GetSensorEvents() (begin []event.SensorBeginTouchEvent, end []event.SensorEndTouchEvent) {

	return w.queues.SensorBegin.Stable(), w.queues.SensorEnd.Stable()
}
