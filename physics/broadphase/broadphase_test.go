package broadphase

import (
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

func box(x, y, half float64) math2d.AABB {

	return math2d.AABB{
		Min: math2d.Vec2{X: x - half, Y: y - half},
		Max: math2d.Vec2{X: x + half, Y: y + half},
	}
}

func TestCreateProxyReportsInitialMove(t *testing.T) {

	pool := idpool.New(0)
	tree := NewTree()
	a := pool.Alloc()
	tree.CreateProxy(a, box(0, 0, 1))

	moved := tree.MoveEvents()
	if len(moved) != 1 || moved[0] != a {
		t.Fatalf("expected newly created proxy in move events, got %v", moved)
	}
	if len(tree.MoveEvents()) != 0 {
		t.Fatalf("expected move list cleared after consuming it")
	}
}

func TestPairEventsDetectsNewAndLostOverlap(t *testing.T) {

	pool := idpool.New(0)
	tree := NewTree()
	a := pool.Alloc()
	b := pool.Alloc()

	tree.CreateProxy(a, box(0, 0, 1))
	tree.CreateProxy(b, box(0.5, 0, 1))

	moved := tree.MoveEvents()
	newPairs, lostPairs := tree.PairEvents(moved)
	if len(newPairs) != 1 {
		t.Fatalf("expected one new pair, got %v", newPairs)
	}
	if len(lostPairs) != 0 {
		t.Fatalf("expected no lost pairs, got %v", lostPairs)
	}
	if !tree.ContainsPair(PairKey(a, b)) {
		t.Fatalf("expected pair set to contain a/b")
	}

	tree.MoveProxy(b, box(100, 100, 1))
	moved = tree.MoveEvents()
	newPairs, lostPairs = tree.PairEvents(moved)
	if len(newPairs) != 0 {
		t.Fatalf("expected no new pairs after separating, got %v", newPairs)
	}
	if len(lostPairs) != 1 {
		t.Fatalf("expected one lost pair after separating, got %v", lostPairs)
	}
	if tree.ContainsPair(PairKey(a, b)) {
		t.Fatalf("expected pair set to no longer contain a/b")
	}
}

func TestMoveProxyWithinFatMarginDoesNotReportMove(t *testing.T) {

	pool := idpool.New(0)
	tree := NewTree()
	a := pool.Alloc()
	tree.CreateProxy(a, box(0, 0, 1))
	tree.MoveEvents() // drain the creation move

	tree.MoveProxy(a, box(0.001, 0, 1))
	if len(tree.MoveEvents()) != 0 {
		t.Fatalf("expected a tiny move within the fat margin to not register as moved")
	}
}

func TestDestroyProxyReportsLostPairs(t *testing.T) {

	pool := idpool.New(0)
	tree := NewTree()
	a := pool.Alloc()
	b := pool.Alloc()
	tree.CreateProxy(a, box(0, 0, 1))
	tree.CreateProxy(b, box(0.5, 0, 1))
	tree.PairEvents(tree.MoveEvents())

	tree.DestroyProxy(b)
	_, lostPairs := tree.PairEvents(nil)
	if len(lostPairs) != 1 {
		t.Fatalf("expected destroying a paired proxy to report a lost pair, got %v", lostPairs)
	}
}

func TestQueryVisitsOverlappingProxiesOnly(t *testing.T) {

	pool := idpool.New(0)
	tree := NewTree()
	a := pool.Alloc()
	b := pool.Alloc()
	tree.CreateProxy(a, box(0, 0, 1))
	tree.CreateProxy(b, box(10, 10, 1))

	var hits []idpool.Handle
	tree.Query(box(0, 0, 1), func(h idpool.Handle) bool {
		hits = append(hits, h)
		return true
	})
	if len(hits) != 1 || hits[0] != a {
		t.Fatalf("expected only a to be visited, got %v", hits)
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {

	pool := idpool.New(0)
	a := pool.Alloc()
	b := pool.Alloc()
	if PairKey(a, b) != PairKey(b, a) {
		t.Fatalf("expected PairKey to be symmetric")
	}
}
