package toi

import (
	"math"
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

func staticSweep(xf math2d.Transform2) math2d.Sweep {
	return math2d.Sweep{C1: xf.P, C2: xf.P, Q1: xf.Q, Q2: xf.Q}
}

func TestSweepCatchesFastBulletTunnelingThroughWall(t *testing.T) {

	wall := object.SegmentGeometry{Point1: math2d.Vec2{X: -5, Y: 0}, Point2: math2d.Vec2{X: 5, Y: 0}}
	bullet := object.CircleGeometry{Radius: 0.1}

	// The bullet starts well above the wall and, over this step, would
	// cross straight through it without continuous collision.
	bulletSweep := math2d.Sweep{
		C1: math2d.Vec2{X: 0, Y: 2},
		C2: math2d.Vec2{X: 0, Y: -2},
		Q1: math2d.IdentityRot,
		Q2: math2d.IdentityRot,
	}
	wallSweep := staticSweep(math2d.IdentityTransform)

	result := Sweep(bulletSweep, wallSweep, bullet, wall)

	if !result.Hit {
		t.Fatalf("expected the sweep to catch the bullet crossing the wall")
	}
	if result.T <= 0 || result.T >= 1 {
		t.Fatalf("expected an impact fraction strictly between 0 and 1, got %v", result.T)
	}
	// At y=2 lerped to y=-2, the bullet reaches y~=0.1 (wall surface plus
	// radius) at t = (2-0.1)/4 = 0.475.
	if math.Abs(result.T-0.475) > 0.02 {
		t.Fatalf("expected the impact fraction near 0.475, got %v", result.T)
	}
	if result.Normal.Y >= 0 {
		t.Fatalf("expected the manifold normal to point from the bullet down toward the wall, got %v", result.Normal)
	}
}

func TestSweepMissesWhenNeverWithinTolerance(t *testing.T) {

	wall := object.SegmentGeometry{Point1: math2d.Vec2{X: -5, Y: 0}, Point2: math2d.Vec2{X: 5, Y: 0}}
	bullet := object.CircleGeometry{Radius: 0.1}

	bulletSweep := math2d.Sweep{
		C1: math2d.Vec2{X: 0, Y: 2},
		C2: math2d.Vec2{X: 0, Y: 1},
		Q1: math2d.IdentityRot,
		Q2: math2d.IdentityRot,
	}
	wallSweep := staticSweep(math2d.IdentityTransform)

	result := Sweep(bulletSweep, wallSweep, bullet, wall)

	if result.Hit {
		t.Fatalf("expected no impact when the bullet never reaches the wall, got t=%v", result.T)
	}
}

func TestResolvePicksEarliestCandidate(t *testing.T) {

	near := object.SegmentGeometry{Point1: math2d.Vec2{X: -5, Y: 1}, Point2: math2d.Vec2{X: 5, Y: 1}}
	far := object.SegmentGeometry{Point1: math2d.Vec2{X: -5, Y: 0}, Point2: math2d.Vec2{X: 5, Y: 0}}
	bullet := object.CircleGeometry{Radius: 0.1}

	bulletSweep := math2d.Sweep{
		C1: math2d.Vec2{X: 0, Y: 3},
		C2: math2d.Vec2{X: 0, Y: -1},
		Q1: math2d.IdentityRot,
		Q2: math2d.IdentityRot,
	}

	candidates := []Candidate{
		{Geometry: far, Sweep: staticSweep(math2d.IdentityTransform)},
		{Geometry: near, Sweep: staticSweep(math2d.IdentityTransform)},
	}

	result := Resolve(bulletSweep, bullet, candidates)

	if !result.Hit {
		t.Fatalf("expected a hit against the nearer wall")
	}
	// Hits the y=1 wall (plus radius) before it could ever reach y=0.
	if result.T >= 0.6 {
		t.Fatalf("expected the earlier (nearer) candidate's impact fraction, got %v", result.T)
	}
}

func TestClampAngularDisplacementCapsFastSpin(t *testing.T) {

	sweep := math2d.Sweep{
		Q1: math2d.IdentityRot,
		Q2: math2d.NewRot(math.Pi), // a half turn in one step
	}

	clamped := ClampAngularDisplacement(sweep, false, false)

	delta := clamped.Q2.Angle() - clamped.Q1.Angle()
	if math.Abs(delta-maxRotation) > 1e-9 {
		t.Fatalf("expected the angular displacement capped to %v, got %v", maxRotation, delta)
	}
}

func TestClampAngularDisplacementExemptsFastRotationAndCenteredCircles(t *testing.T) {

	sweep := math2d.Sweep{Q1: math2d.IdentityRot, Q2: math2d.NewRot(math.Pi)}

	if got := ClampAngularDisplacement(sweep, true, false); got.Q2.Angle() != math.Pi {
		t.Fatalf("expected allowFastRotation to skip the cap, got %v", got.Q2.Angle())
	}
	if got := ClampAngularDisplacement(sweep, false, true); got.Q2.Angle() != math.Pi {
		t.Fatalf("expected a centered circle to skip the cap, got %v", got.Q2.Angle())
	}
}

func TestApplyImpactZeroesApproachVelocityWithoutRestitution(t *testing.T) {

	b := object.NewBody(idpool.Handle{}, object.Dynamic)
	b.LinearVelocity = math2d.Vec2{X: 0, Y: -5}
	normal := math2d.Vec2{X: 0, Y: 1}

	ApplyImpact(b, normal, 0)

	if math.Abs(b.LinearVelocity.Y) > 1e-9 {
		t.Fatalf("expected the normal-direction velocity zeroed, got %v", b.LinearVelocity.Y)
	}
}

func TestApplyImpactReflectsWithRestitution(t *testing.T) {

	b := object.NewBody(idpool.Handle{}, object.Dynamic)
	b.LinearVelocity = math2d.Vec2{X: 0, Y: -5}
	normal := math2d.Vec2{X: 0, Y: 1}

	ApplyImpact(b, normal, 0.5)

	if math.Abs(b.LinearVelocity.Y-2.5) > 1e-9 {
		t.Fatalf("expected the bounce-back velocity 0.5*5=2.5, got %v", b.LinearVelocity.Y)
	}
}

func TestApplyImpactLeavesSeparatingVelocityAlone(t *testing.T) {

	b := object.NewBody(idpool.Handle{}, object.Dynamic)
	b.LinearVelocity = math2d.Vec2{X: 0, Y: 5}
	normal := math2d.Vec2{X: 0, Y: 1}

	ApplyImpact(b, normal, 0)

	if b.LinearVelocity.Y != 5 {
		t.Fatalf("expected an already-separating body untouched, got %v", b.LinearVelocity.Y)
	}
}
