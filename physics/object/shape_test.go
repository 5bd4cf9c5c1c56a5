package object

import (
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
)

func TestFilterCategoryMaskRule(t *testing.T) {

	a := Filter{CategoryBits: 0b0001, MaskBits: 0b0010}
	b := Filter{CategoryBits: 0b0010, MaskBits: 0b0001}

	if !a.ShouldCollide(b) {
		t.Fatalf("expected a and b to collide: each's category is in the other's mask")
	}

	c := Filter{CategoryBits: 0b0100, MaskBits: 0b1000}
	if a.ShouldCollide(c) {
		t.Fatalf("expected a and c to not collide: disjoint category/mask")
	}
}

func TestFilterGroupOverridesBits(t *testing.T) {

	always := Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: 5}
	other := Filter{CategoryBits: 2, MaskBits: 0, GroupIndex: 5}
	if !always.ShouldCollide(other) {
		t.Fatalf("positive matching group index must force collide regardless of bits")
	}

	never := Filter{CategoryBits: 1, MaskBits: ^uint64(0), GroupIndex: -3}
	otherNever := Filter{CategoryBits: 1, MaskBits: ^uint64(0), GroupIndex: -3}
	if never.ShouldCollide(otherNever) {
		t.Fatalf("negative matching group index must force never-collide regardless of bits")
	}
}

func TestCircleGeometryLocalBounds(t *testing.T) {

	c := CircleGeometry{Center: math2d.Vec2{X: 1, Y: 1}, Radius: 0.5}
	bb := c.LocalBounds()
	want := math2d.AABB{Min: math2d.Vec2{X: 0.5, Y: 0.5}, Max: math2d.Vec2{X: 1.5, Y: 1.5}}
	if bb != want {
		t.Fatalf("CircleGeometry.LocalBounds() = %+v, want %+v", bb, want)
	}
}
