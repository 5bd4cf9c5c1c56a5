package solver

import (
	"math"
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
)

func dynamicBody() *BodyState {

	return &BodyState{DeltaRotation: math2d.IdentityRot, InvMass: 1, InvInertia: 1}
}

func TestWarmStartContactAppliesPersistedImpulses(t *testing.T) {

	cc := equation.PrepareContact(
		math2d.Vec2{Y: 1},
		[]math2d.Vec2{{X: 0, Y: 0}},
		[]float64{0},
		math2d.Vec2{}, math2d.Vec2{Y: -1},
		1, 1, 1, 1,
		0.3, 0, 0, 0,
		equation.RigidSoftness,
	)
	cc.Points[0].NormalImpulse = 2
	cc.Points[0].TangentImpulse = 1

	a, b := dynamicBody(), dynamicBody()
	WarmStartContact(cc, a, b)

	if a.LinearVelocity.Y >= 0 {
		t.Fatalf("expected warm-starting the normal impulse to push body A away from the normal, got %v", a.LinearVelocity.Y)
	}
	if b.LinearVelocity.Y <= 0 {
		t.Fatalf("expected warm-starting the normal impulse to push body B along the normal, got %v", b.LinearVelocity.Y)
	}
}

func TestSolveContactResolvesApproachingVelocity(t *testing.T) {

	cc := equation.PrepareContact(
		math2d.Vec2{Y: 1},
		[]math2d.Vec2{{X: 0, Y: 0}},
		[]float64{0},
		math2d.Vec2{}, math2d.Vec2{Y: -1},
		1, 1, 0, 0,
		0, 0, 0, 0,
		equation.RigidSoftness,
	)

	a := dynamicBody()
	b := dynamicBody()
	b.LinearVelocity = math2d.Vec2{Y: -5} // approaching A along -normal

	SolveContact(cc, a, b, 60, false)

	dv := relativeVelocity(a, b, cc.Points[0].AnchorA, cc.Points[0].AnchorB)
	vn := math2d.Dot(dv, cc.Normal)
	if vn < -1e-6 {
		t.Fatalf("expected approaching normal velocity to be resolved to >= 0, got %v", vn)
	}
	if cc.Points[0].NormalImpulse <= 0 {
		t.Fatalf("expected a positive accumulated normal impulse, got %v", cc.Points[0].NormalImpulse)
	}
}

func TestSolveContactFrictionClampedToNormalImpulse(t *testing.T) {

	cc := equation.PrepareContact(
		math2d.Vec2{Y: 1},
		[]math2d.Vec2{{X: 0, Y: 0}},
		[]float64{0},
		math2d.Vec2{}, math2d.Vec2{Y: -1},
		1, 1, 0, 0,
		0.5, 0, 0, 0,
		equation.RigidSoftness,
	)

	a := dynamicBody()
	b := dynamicBody()
	b.LinearVelocity = math2d.Vec2{X: -100, Y: -5}

	SolveContact(cc, a, b, 60, false)

	maxFriction := cc.Friction * cc.Points[0].NormalImpulse
	if math.Abs(cc.Points[0].TangentImpulse) > maxFriction+1e-9 {
		t.Fatalf("expected tangent impulse clamped to friction*normalImpulse (%v), got %v", maxFriction, cc.Points[0].TangentImpulse)
	}
}

func TestApplyRestitutionSkipsBelowThreshold(t *testing.T) {

	cc := equation.PrepareContact(
		math2d.Vec2{Y: 1},
		[]math2d.Vec2{{X: 0, Y: 0}},
		[]float64{0},
		math2d.Vec2{}, math2d.Vec2{Y: -1},
		1, 1, 0, 0,
		0, 0.5, 0, 0,
		equation.RigidSoftness,
	)
	cc.Points[0].RelativeVelocity = -0.1 // slower than any reasonable threshold
	cc.Points[0].MaxNormalImpulse = 1

	a, b := dynamicBody(), dynamicBody()
	ApplyRestitution(cc, a, b, 1.0)

	if cc.Points[0].NormalImpulse != 0 {
		t.Fatalf("expected no restitution bounce below threshold, got impulse %v", cc.Points[0].NormalImpulse)
	}
}

func TestApplyRestitutionBouncesAboveThreshold(t *testing.T) {

	cc := equation.PrepareContact(
		math2d.Vec2{Y: 1},
		[]math2d.Vec2{{X: 0, Y: 0}},
		[]float64{0},
		math2d.Vec2{}, math2d.Vec2{Y: -1},
		1, 1, 0, 0,
		0, 0.5, 0, 0,
		equation.RigidSoftness,
	)
	cc.Points[0].RelativeVelocity = -10
	cc.Points[0].MaxNormalImpulse = 1

	a, b := dynamicBody(), dynamicBody()
	ApplyRestitution(cc, a, b, 1.0)

	if cc.Points[0].NormalImpulse <= 0 {
		t.Fatalf("expected a bounce impulse above the restitution threshold, got %v", cc.Points[0].NormalImpulse)
	}
}
