// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toi implements continuous collision detection (spec §4.10,
// C10): between the final substep's position integration and writeback,
// a "bullet" or otherwise fast body is swept against candidate static
// and bullet geometry and clamped to its first impact instead of being
// allowed to tunnel through.
//
// There is no separate GJK/simplex distance routine in this core (spec
// §1 scopes narrow-phase geometry tests out as an external collaborator,
// and physics/contact's manifold-function registry is the only such
// oracle that exists); Sweep below reuses that registry's Collide
// function as its separation query instead of standing up a second,
// parallel distance implementation for the same shape pairs.
package toi

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/broadphase"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
	"github.com/gophysics/kinetic2d/physics/solver"
)

const (
	// linearSlop is the separation a sweep is advanced into before the
	// root-find accepts it as "touching", the same value as
	// physics/contact's linearSlop. It lies inside
	// contact.SpeculativeDistance, so a TOI-clamped pair still has
	// manifold points and physics/contact.Registry.Refresh (which counts
	// any point as touching) calls it touching on the next step.
	linearSlop = 0.005

	// sampleCount is how many equal steps Sweep walks across [0,1]
	// looking for a sign change before bisecting; maxIterations bounds
	// the bisection itself. Both mirror spec §4.10's "terminate when
	// separation drops below tolerance or iteration budget exceeded".
	sampleCount   = 8
	maxIterations = 20

	// maxRotation bounds one step's angular displacement for a body that
	// does not allow fast rotation (spec §4.10 "Fast rotation gating").
	maxRotation = 0.25 * math.Pi
)

// Candidate is one shape a bullet's swept-AABB query returned: its
// geometry and its own sweep across the step (a static shape's sweep has
// C1==C2 and Q1==Q2; another bullet's sweep is its own provisional
// motion for the same step).
type Candidate struct {
	ShapeId  idpool.Handle
	BodyId   idpool.Handle
	Geometry object.Geometry
	Sweep    math2d.Sweep
}

// Result is one sweep's outcome: whether the pair comes within
// tolerance before t=1, and if so at what fraction and along which
// normal.
type Result struct {
	Hit    bool
	T      float64
	Normal math2d.Vec2
}

// SweepFromBody builds the sweep from body's transform at the start of
// the step to state's accumulated delta at the end of the final
// substep, the "transform_0 to transform_1" pair spec §4.10 sweeps
// across. It must run before solver.WriteBack, since WriteBack is what
// overwrites body.Transform with the very endpoint this sweep needs to
// read out of state first.
func SweepFromBody(body *object.Body, state *solver.BodyState) math2d.Sweep {

	c1 := body.WorldCenter()
	return math2d.Sweep{
		LocalCenter: body.LocalCenter,
		C1:          c1,
		C2:          math2d.Add2(c1, state.DeltaPosition),
		Q1:          body.Transform.Q,
		Q2:          math2d.MulRot(body.Transform.Q, state.DeltaRotation),
	}
}

// SweepAABB returns the AABB enclosing geom across the whole of sweep,
// the "compute swept AABB from transform_0 to transform_1" query spec
// §4.10 step 1 describes.
func SweepAABB(sweep math2d.Sweep, geom object.Geometry) math2d.AABB {

	local := geom.LocalBounds()
	return math2d.Union(
		math2d.TransformAABB(sweep.Interpolate(0), local),
		math2d.TransformAABB(sweep.Interpolate(1), local),
	)
}

// Query returns every shape (other than one owned by the bullet's own
// body) whose current broad-phase proxy overlaps sweptAABB, spec §4.10
// step 2's "broad-phase query returns candidates".
func Query(tree *broadphase.Tree, bulletBodyId idpool.Handle, sweptAABB math2d.AABB, shapes func(idpool.Handle) *object.Shape) []idpool.Handle {

	var hits []idpool.Handle
	tree.Query(sweptAABB, func(shapeId idpool.Handle) bool {
		s := shapes(shapeId)
		if s == nil || s.BodyId == bulletBodyId {
			return true
		}
		hits = append(hits, shapeId)
		return true
	})
	return hits
}

// separation returns the narrow-phase's minimum manifold-point
// separation between geomA at xfA and geomB at xfB (positive when
// apart, negative when penetrating) and the manifold normal, or
// hit=false if the registry has no function for this pair. A manifold
// with no points (the pair is farther apart than
// contact.SpeculativeDistance) reports math.MaxFloat64 with hit=true.
func separation(geomA object.Geometry, xfA math2d.Transform2, geomB object.Geometry, xfB math2d.Transform2) (sep float64, normal math2d.Vec2, hit bool) {

	m, ok := contact.Collide(geomA, xfA, geomB, xfB)
	if !ok {
		return math.MaxFloat64, math2d.Vec2{}, false
	}
	if len(m.Points) == 0 {
		return math.MaxFloat64, m.Normal, true
	}
	min := m.Points[0].Separation
	for _, p := range m.Points[1:] {
		if p.Separation < min {
			min = p.Separation
		}
	}
	return min, m.Normal, true
}

// Sweep runs the bilateral-advancement root-find spec §4.10 step 3
// describes ("iteratively advance ... at each iteration computing
// min-distance via the shape pair's simplex routine; terminate when
// separation drops below tolerance or iteration budget exceeded"),
// evaluating both sweeps at the same shared step fraction t since the
// caller already expresses sweepA and sweepB on one [0,1] step timeline.
// It samples separation(t) across sampleCount equal steps to find the
// first interval it drops through linearSlop, then bisects within that
// interval for up to maxIterations. Returns hit=false if the pair never
// comes within tolerance before t=1, or if the registry has no manifold
// function for this shape pair.
func Sweep(sweepA, sweepB math2d.Sweep, geomA, geomB object.Geometry) Result {

	eval := func(t float64) (float64, math2d.Vec2, bool) {
		return separation(geomA, sweepA.Interpolate(t), geomB, sweepB.Interpolate(t))
	}

	sep0, n0, ok := eval(0)
	if !ok {
		return Result{}
	}
	if sep0 <= linearSlop {
		return Result{Hit: true, T: 0, Normal: n0}
	}

	prevT := 0.0
	for i := 1; i <= sampleCount; i++ {
		t := float64(i) / float64(sampleCount)
		sep, _, ok := eval(t)
		if !ok {
			return Result{}
		}
		if sep <= linearSlop {
			lo, hi := prevT, t
			for iter := 0; iter < maxIterations; iter++ {
				mid := 0.5 * (lo + hi)
				s, _, _ := eval(mid)
				if s > linearSlop {
					lo = mid
				} else {
					hi = mid
				}
			}
			_, n, _ := eval(hi)
			return Result{Hit: true, T: hi, Normal: n}
		}
		prevT = t
	}

	return Result{}
}

// Resolve runs Sweep against every candidate and keeps the earliest
// impact, spec §4.10 step 4's "the earliest t* across candidates is the
// bullet's clamp".
func Resolve(bulletSweep math2d.Sweep, bulletGeometry object.Geometry, candidates []Candidate) Result {

	best := Result{}
	for _, c := range candidates {
		r := Sweep(bulletSweep, c.Sweep, bulletGeometry, c.Geometry)
		if r.Hit && (!best.Hit || r.T < best.T) {
			best = r
		}
	}
	return best
}

// ClampAngularDisplacement bounds sweep's angular displacement to
// maxRotation when the owning body disallows fast rotation, the gating
// spec §4.10 describes ("bodies without allowFastRotation have their
// angular displacement capped to avoid missed rotational tunneling").
// circleAtCenter exempts a body whose every shape is a circle centered
// on its own center of mass: such a shape's silhouette is invariant
// under rotation, so no amount of spin can tunnel it.
func ClampAngularDisplacement(sweep math2d.Sweep, allowFastRotation, circleAtCenter bool) math2d.Sweep {

	if allowFastRotation || circleAtCenter {
		return sweep
	}

	angle1 := sweep.Q1.Angle()
	angle2 := sweep.Q2.Angle()
	delta := angle2 - angle1

	switch {
	case delta > maxRotation:
		sweep.Q2 = math2d.NewRot(angle1 + maxRotation)
	case delta < -maxRotation:
		sweep.Q2 = math2d.NewRot(angle1 - maxRotation)
	}
	return sweep
}

// ApplyImpact zeros (or, when restitution > 0, reflects) body's linear
// velocity component along normal, the post-clamp velocity response spec
// §4.10 step 4 calls for ("zero relative velocity along the contact
// normal (or reflect, if restitution applies)"). It is a no-op if the
// body is already separating along normal.
func ApplyImpact(body *object.Body, normal math2d.Vec2, restitution float64) {

	vn := math2d.Dot(body.LinearVelocity, normal)
	if vn >= 0 {
		return
	}
	body.LinearVelocity = math2d.Add2(body.LinearVelocity, math2d.Scale2(normal, -(1+restitution)*vn))
}
