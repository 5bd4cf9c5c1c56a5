package world

import (
	"testing"

	"github.com/gophysics/kinetic2d/config"
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

func TestRayCastHitsNearestShapeFirst(t *testing.T) {

	w := New(config.DefaultWorldDef)

	_, err := w.CreateBody(config.BodyDef{
		Type:     "static",
		Position: math2d.Vec2{X: 5, Y: 0},
		Shapes:   []config.ShapeDef{{Type: "circle", Radius: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = w.CreateBody(config.BodyDef{
		Type:     "static",
		Position: math2d.Vec2{X: 10, Y: 0},
		Shapes:   []config.ShapeDef{{Type: "circle", Radius: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var hits int
	var firstFraction float64
	w.RayCast(math2d.Vec2{X: -5, Y: 0}, math2d.Vec2{X: 20, Y: 0}, func(h RayCastHit) bool {
		hits++
		if hits == 1 {
			firstFraction = h.Fraction
		}
		return true
	})

	if hits != 2 {
		t.Fatalf("expected the ray to hit both circles, got %d hits", hits)
	}
	if firstFraction <= 0 || firstFraction >= 0.5 {
		t.Fatalf("expected the nearer circle (at x=5) to be visited first, got fraction %v", firstFraction)
	}
}

func TestRayCastVisitorCanStopEarly(t *testing.T) {

	w := New(config.DefaultWorldDef)
	w.CreateBody(config.BodyDef{
		Type:     "static",
		Position: math2d.Vec2{X: 5, Y: 0},
		Shapes:   []config.ShapeDef{{Type: "circle", Radius: 1}},
	})
	w.CreateBody(config.BodyDef{
		Type:     "static",
		Position: math2d.Vec2{X: 10, Y: 0},
		Shapes:   []config.ShapeDef{{Type: "circle", Radius: 1}},
	})

	var hits int
	w.RayCast(math2d.Vec2{X: -5, Y: 0}, math2d.Vec2{X: 20, Y: 0}, func(h RayCastHit) bool {
		hits++
		return false
	})

	if hits != 1 {
		t.Fatalf("expected visitor to stop after the first hit, got %d", hits)
	}
}

func TestOverlapAABBFindsShapeInRegion(t *testing.T) {

	w := New(config.DefaultWorldDef)
	id, err := w.CreateBody(config.BodyDef{
		Type:     "static",
		Position: math2d.Vec2{X: 0, Y: 0},
		Shapes:   []config.ShapeDef{{Type: "circle", Radius: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found bool
	w.OverlapAABB(math2d.AABB{Min: math2d.Vec2{X: -2, Y: -2}, Max: math2d.Vec2{X: 2, Y: 2}}, func(shapeId idpool.Handle) bool {
		s, ok := w.GetShape(shapeId)
		if ok && s.BodyId == id {
			found = true
		}
		return true
	})

	if !found {
		t.Fatalf("expected OverlapAABB to find the shape whose region it spatially overlaps")
	}
}
