package config

import (
	"math"
	"strings"
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

func vec(x, y float64) math2d.Vec2 {
	return math2d.Vec2{X: x, Y: y}
}

func TestLoadWorldDefStartsFromDefaultsAndOverridesGravity(t *testing.T) {

	doc := `
gravity: {x: 0, y: -9.8}
bodies:
  - name: ground
    type: static
    shapes:
      - type: segment
        point1: {x: -10, y: 0}
        point2: {x: 10, y: 0}
`
	def, err := LoadWorldDef(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if def.Gravity.Y != -9.8 {
		t.Fatalf("expected overridden gravity.y -9.8, got %v", def.Gravity.Y)
	}
	if def.ContactHertz != DefaultWorldDef.ContactHertz {
		t.Fatalf("expected contactHertz to keep its default, got %v", def.ContactHertz)
	}
	if !def.EnableSleep {
		t.Fatalf("expected enableSleep to keep its default true")
	}
	if len(def.Bodies) != 1 || def.Bodies[0].Name != "ground" {
		t.Fatalf("expected one body named ground, got %+v", def.Bodies)
	}
}

func TestLoadWorldDefRejectsMalformedYAML(t *testing.T) {

	if _, err := LoadWorldDef(strings.NewReader("gravity: [this is not a vec2")); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}

func TestBuildStaticSegmentBody(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)

	def := BodyDef{
		Type: "static",
		Shapes: []ShapeDef{
			{Type: "segment", Point1: vec(-5, 0), Point2: vec(5, 0)},
		},
	}

	b, shapeList, err := Build(def, bodies, shapes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type != object.Static {
		t.Fatalf("expected a static body, got %v", b.Type)
	}
	if b.Mass != 0 || b.InvMass != 0 {
		t.Fatalf("expected a static body to carry no mass, got mass=%v invMass=%v", b.Mass, b.InvMass)
	}
	if len(shapeList) != 1 {
		t.Fatalf("expected one shape, got %d", len(shapeList))
	}
	if shapeList[0].BodyId != b.Id {
		t.Fatalf("expected the shape's BodyId to reference its owning body")
	}
}

func TestBuildDynamicCircleComputesMass(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)

	def := BodyDef{
		Type:     "dynamic",
		Position: vec(1, 2),
		Shapes: []ShapeDef{
			{Type: "circle", Radius: 2, Density: 1},
		},
	}

	b, _, err := Build(def, bodies, shapes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMass := math.Pi * 2 * 2
	if math.Abs(b.Mass-wantMass) > 1e-9 {
		t.Fatalf("expected mass pi*r^2=%v, got %v", wantMass, b.Mass)
	}
	if math.Abs(b.InvMass-1/wantMass) > 1e-9 {
		t.Fatalf("expected invMass 1/mass, got %v", b.InvMass)
	}
	wantInertia := 0.5 * wantMass * 2 * 2
	if math.Abs(b.Inertia-wantInertia) > 1e-9 {
		t.Fatalf("expected inertia 0.5*m*r^2=%v, got %v", wantInertia, b.Inertia)
	}
}

func TestBuildUnknownBodyTypeErrors(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)

	_, _, err := Build(BodyDef{Type: "ethereal"}, bodies, shapes)
	if err == nil {
		t.Fatalf("expected an error for an unknown body type")
	}
}

func TestBuildPolygonRequiresThreeVertices(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)

	_, _, err := Build(BodyDef{
		Type: "dynamic",
		Shapes: []ShapeDef{
			{Type: "polygon", Vertices: []math2d.Vec2{vec(0, 0), vec(1, 0)}},
		},
	}, bodies, shapes)
	if err == nil {
		t.Fatalf("expected an error for a polygon with too few vertices")
	}
}

func TestBuildSquarePolygonCentroidIsCenter(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)

	square := []math2d.Vec2{vec(-1, -1), vec(1, -1), vec(1, 1), vec(-1, 1)}

	def := BodyDef{
		Type: "dynamic",
		Shapes: []ShapeDef{
			{Type: "polygon", Vertices: square, Density: 1},
		},
	}

	b, shapeList, err := Build(def, bodies, shapes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	poly := shapeList[0].Geometry.(object.PolygonGeometry)
	if math.Abs(poly.Centroid.X) > 1e-9 || math.Abs(poly.Centroid.Y) > 1e-9 {
		t.Fatalf("expected a square centered at the origin to have centroid (0,0), got %v", poly.Centroid)
	}

	wantMass := 4.0 // 2x2 square, density 1
	if math.Abs(b.Mass-wantMass) > 1e-6 {
		t.Fatalf("expected mass %v, got %v", wantMass, b.Mass)
	}
}
