package solver

import (
	"math"
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

func TestPrepareBodyAppliesGravityAndDamping(t *testing.T) {

	b := object.NewBody(idpool.Handle{Index1: 1}, object.Dynamic)
	b.LinearDamping = 1
	b.AngularVelocity = 2
	b.AngularDamping = 1
	b.InvMass = 1
	b.InvInertia = 1

	h := 0.1
	s := PrepareBody(b, h, math2d.Vec2{Y: -10}, math2d.Vec2{})

	wantVY := (-10 * h) / (1 + h*1)
	if math.Abs(s.LinearVelocity.Y-wantVY) > 1e-9 {
		t.Fatalf("expected damped gravity velocity %v, got %v", wantVY, s.LinearVelocity.Y)
	}
	wantW := 2 / (1 + h*1)
	if math.Abs(s.AngularVelocity-wantW) > 1e-9 {
		t.Fatalf("expected damped angular velocity %v, got %v", wantW, s.AngularVelocity)
	}
}

func TestPrepareBodyRespectsMotionLocks(t *testing.T) {

	b := object.NewBody(idpool.Handle{Index1: 1}, object.Dynamic)
	b.LinearVelocity = math2d.Vec2{X: 5, Y: 5}
	b.AngularVelocity = 3
	b.Locks = object.MotionLocks{X: true, AngularZ: true}

	s := PrepareBody(b, 1.0/60, math2d.Vec2{}, math2d.Vec2{})
	if s.LinearVelocity.X != 0 {
		t.Fatalf("expected X lock to zero linear velocity X, got %v", s.LinearVelocity.X)
	}
	if s.LinearVelocity.Y != 5 {
		t.Fatalf("expected Y to remain unlocked, got %v", s.LinearVelocity.Y)
	}
	if s.AngularVelocity != 0 {
		t.Fatalf("expected angularZ lock to zero angular velocity, got %v", s.AngularVelocity)
	}
}

func TestPrepareBodyStaticIgnoresGravity(t *testing.T) {

	b := object.NewBody(idpool.Handle{Index1: 1}, object.Static)
	s := PrepareBody(b, 1.0/60, math2d.Vec2{Y: -10}, math2d.Vec2{})
	if s.LinearVelocity != (math2d.Vec2{}) {
		t.Fatalf("expected a static body to ignore gravity, got %v", s.LinearVelocity)
	}
}

func TestIntegratePositionAccumulatesDelta(t *testing.T) {

	s := &BodyState{LinearVelocity: math2d.Vec2{X: 2}, AngularVelocity: 1, DeltaRotation: math2d.IdentityRot}
	IntegratePosition(s, 0.5)
	IntegratePosition(s, 0.5)

	if math.Abs(s.DeltaPosition.X-2) > 1e-9 {
		t.Fatalf("expected deltaPosition.X = 2 after two half-second substeps at vx=2, got %v", s.DeltaPosition.X)
	}
	// IntegrateRot is a first-order update plus renormalization, so each
	// half-second substep at w=1 turns by atan(0.5), not exactly 0.5 rad.
	if math.Abs(s.DeltaRotation.Angle()-2*math.Atan(0.5)) > 1e-6 {
		t.Fatalf("expected deltaRotation angle ~= 2*atan(0.5) rad, got %v", s.DeltaRotation.Angle())
	}
}

func TestWriteBackUpdatesOriginAroundCenterOfMass(t *testing.T) {

	b := object.NewBody(idpool.Handle{Index1: 1}, object.Dynamic)
	b.LocalCenter = math2d.Vec2{X: 1}

	s := &BodyState{DeltaRotation: math2d.IdentityRot, DeltaPosition: math2d.Vec2{X: 3}}

	WriteBack(b, s)

	gotCenter := b.WorldCenter()
	if math.Abs(gotCenter.X-4) > 1e-9 {
		t.Fatalf("expected world center X = 4 after writeback, got %v", gotCenter.X)
	}
}

func TestSeparationBiasSpeculativeMargin(t *testing.T) {

	bias, massScale, impulseScale := separationBias(0.5, 60, equation.RigidSoftness, true)
	if bias != 30 {
		t.Fatalf("expected speculative bias = separation*invH = 30, got %v", bias)
	}
	if massScale != 1 || impulseScale != 0 {
		t.Fatalf("expected an unsoftened speculative margin, got massScale=%v impulseScale=%v", massScale, impulseScale)
	}
}

func TestSeparationBiasZeroWithoutBias(t *testing.T) {

	bias, massScale, impulseScale := separationBias(-0.1, 60, equation.RigidSoftness, false)
	if bias != 0 || massScale != 1 || impulseScale != 0 {
		t.Fatalf("expected the zero-bias relaxation pass to ignore separation, got bias=%v massScale=%v impulseScale=%v", bias, massScale, impulseScale)
	}
}

func TestSeparationBiasClampsToMaxBiasVelocity(t *testing.T) {

	soft := equation.MakeSoft(equation.ContactHertz, equation.ContactDampingRatio, 1.0/60)
	bias, _, _ := separationBias(-1000, 60, soft, true)
	if bias != -maxBiasVelocity {
		t.Fatalf("expected a deep penetration's bias to clamp to -maxBiasVelocity, got %v", bias)
	}
}
