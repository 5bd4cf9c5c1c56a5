package world

import (
	"testing"

	"github.com/gophysics/kinetic2d/config"
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/joint"
	"github.com/gophysics/kinetic2d/physics/object"
)

func circleBody(bodyType string, x, y float64) config.BodyDef {
	return config.BodyDef{
		Type:     bodyType,
		Position: math2d.Vec2{X: x, Y: y},
		Shapes: []config.ShapeDef{
			{Type: "circle", Radius: 0.5, Density: 1},
		},
	}
}

func TestCreateGetEnumerateDestroyBody(t *testing.T) {

	w := New(config.DefaultWorldDef)

	id, err := w.CreateBody(circleBody("dynamic", 0, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, ok := w.GetBody(id)
	if !ok || b == nil {
		t.Fatalf("expected to find just-created body")
	}
	if b.Transform.P.Y != 5 {
		t.Fatalf("expected position y=5, got %v", b.Transform.P.Y)
	}

	if got := w.EnumerateBodies(); len(got) != 1 || got[0].Id != id {
		t.Fatalf("expected enumerate to return the one body, got %v", got)
	}

	if err := w.DestroyBody(id); err != nil {
		t.Fatalf("unexpected error destroying body: %v", err)
	}
	if _, ok := w.GetBody(id); ok {
		t.Fatalf("expected body to be gone after destroy")
	}
	if got := w.EnumerateShapes(); len(got) != 0 {
		t.Fatalf("expected destroying a body to destroy its shapes too, got %v", got)
	}
}

func TestGetBodyStaleHandleIsNoop(t *testing.T) {

	w := New(config.DefaultWorldDef)

	id, err := w.CreateBody(circleBody("dynamic", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.DestroyBody(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := w.GetBody(id); ok {
		t.Fatalf("expected stale handle to report not-found")
	}
	if err := w.SetBody(id, func(b *object.Body) {}); err != ErrStale {
		t.Fatalf("expected ErrStale mutating a stale handle, got %v", err)
	}
	if err := w.DestroyBody(id); err != nil {
		t.Fatalf("expected destroying an already-stale handle to be a silent no-op, got %v", err)
	}
}

func TestCreateBodyLockedDuringStep(t *testing.T) {

	w := New(config.DefaultWorldDef)
	w.inStep = true

	if _, err := w.CreateBody(circleBody("dynamic", 0, 0)); err != ErrLocked {
		t.Fatalf("expected ErrLocked while inStep, got %v", err)
	}
}

func TestDestroyMarksWorldCorrupt(t *testing.T) {

	w := New(config.DefaultWorldDef)
	id, err := w.CreateBody(circleBody("dynamic", 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w.Destroy()

	if _, err := w.CreateBody(circleBody("dynamic", 1, 1)); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt after Destroy, got %v", err)
	}
	if err := w.DestroyBody(id); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt after Destroy, got %v", err)
	}
	if err := w.Step(1.0/60, 4); err != ErrCorrupt {
		t.Fatalf("expected Step to report ErrCorrupt after Destroy, got %v", err)
	}
}

func TestStepRejectsInvalidArguments(t *testing.T) {

	w := New(config.DefaultWorldDef)

	if err := w.Step(0, 4); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for dt<=0, got %v", err)
	}
	if err := w.Step(1.0/60, 0); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for substepCount<=0, got %v", err)
	}
}

func TestCreateJointRejectsUnknownBody(t *testing.T) {

	w := New(config.DefaultWorldDef)
	a, _ := w.CreateBody(circleBody("dynamic", 0, 0))

	ghost := idpool.Handle{Index1: 9999, Generation: 1}
	if _, err := w.CreateJoint(joint.Distance, a, ghost, joint.Frame{}, joint.Frame{}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument referencing an unknown body, got %v", err)
	}
}

func TestDestroyJointIsRemovedFromEnumeration(t *testing.T) {

	w := New(config.DefaultWorldDef)
	a, _ := w.CreateBody(circleBody("dynamic", 0, 5))
	b, _ := w.CreateBody(circleBody("dynamic", 0, 3))

	jid, err := w.CreateJoint(joint.Distance, a, b, joint.Frame{}, joint.Frame{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.EnumerateJoints(); len(got) != 1 {
		t.Fatalf("expected one joint, got %d", len(got))
	}

	if err := w.DestroyJoint(jid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.EnumerateJoints(); len(got) != 0 {
		t.Fatalf("expected joint list empty after destroy, got %d", len(got))
	}
}

func TestStepAdvancesAFallingBody(t *testing.T) {

	w := New(config.DefaultWorldDef)
	id, err := w.CreateBody(circleBody("dynamic", 0, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Step(1.0/60, 4); err != nil {
		t.Fatalf("unexpected error stepping: %v", err)
	}

	b, _ := w.GetBody(id)
	if b.Transform.P.Y >= 10 {
		t.Fatalf("expected gravity to pull the body down from y=10, got %v", b.Transform.P.Y)
	}
	if b.LinearVelocity.Y >= 0 {
		t.Fatalf("expected downward velocity after one step under gravity, got %v", b.LinearVelocity.Y)
	}
}
