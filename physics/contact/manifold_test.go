package contact

import (
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/object"
)

func xf(x, y float64) math2d.Transform2 {

	return math2d.Transform2{P: math2d.Vec2{X: x, Y: y}, Q: math2d.IdentityRot}
}

func TestCollideCirclesOverlapping(t *testing.T) {

	a := object.CircleGeometry{Radius: 1}
	b := object.CircleGeometry{Radius: 1}

	m, ok := Collide(a, xf(0, 0), b, xf(1.5, 0))
	if !ok {
		t.Fatalf("expected circle-circle to be handled")
	}
	if len(m.Points) != 1 {
		t.Fatalf("expected one contact point, got %d", len(m.Points))
	}
	if m.Points[0].Separation >= 0 {
		t.Fatalf("expected negative separation for overlapping circles, got %v", m.Points[0].Separation)
	}
	if m.Normal.X <= 0 {
		t.Fatalf("expected normal pointing from A toward B (+X), got %+v", m.Normal)
	}
}

func TestCollideCirclesSeparated(t *testing.T) {

	a := object.CircleGeometry{Radius: 1}
	b := object.CircleGeometry{Radius: 1}

	// 0.01 apart: separated, but inside SpeculativeDistance, so the point
	// is kept rather than trimmed.
	m, ok := Collide(a, xf(0, 0), b, xf(2.01, 0))
	if !ok {
		t.Fatalf("expected circle-circle to be handled")
	}
	if m.Points[0].Separation <= 0 {
		t.Fatalf("expected positive separation for distant circles, got %v", m.Points[0].Separation)
	}
}

func TestCollideSwapsOrientationWhenOnlyReverseRegistered(t *testing.T) {

	circle := object.CircleGeometry{Radius: 1}
	segment := object.SegmentGeometry{Point1: math2d.Vec2{X: -5, Y: 0}, Point2: math2d.Vec2{X: 5, Y: 0}}

	// Registered only as (Circle, Segment); calling as (Segment, Circle)
	// must hit the swap-and-negate fallback in Collide.
	m, ok := Collide(segment, xf(0, 0), circle, xf(0, 0.5))
	if !ok {
		t.Fatalf("expected segment-circle to resolve via the swapped circle-segment entry")
	}
	if m.Points[0].Separation >= 0.6 {
		t.Fatalf("expected the circle resting just above the segment to nearly touch, got separation %v", m.Points[0].Separation)
	}
}

func unitSquare() object.PolygonGeometry {

	return object.PolygonGeometry{
		Vertices: []math2d.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
		Normals:  []math2d.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	}
}

func TestCollidePolygonsStackedBoxes(t *testing.T) {

	bottom := unitSquare()
	top := unitSquare()

	// top box resting with a slight overlap on the bottom box
	m, ok := Collide(bottom, xf(0, 0), top, xf(0, 1.9))
	if !ok {
		t.Fatalf("expected polygon-polygon to be handled")
	}
	if len(m.Points) == 0 {
		t.Fatalf("expected at least one contact point for overlapping stacked boxes")
	}
	for _, p := range m.Points {
		if p.Separation > 0.005 {
			t.Fatalf("expected touching separation, got %v", p.Separation)
		}
	}
}
