package contact

import (
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/broadphase"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/object"
)

func newShape(bodies, shapes *idpool.Pool, geom object.Geometry) *object.Shape {

	return &object.Shape{
		Id:       shapes.Alloc(),
		BodyId:   bodies.Alloc(),
		Geometry: geom,
		Material: object.DefaultMaterial,
		Filter:   object.DefaultFilter,
	}
}

func TestSyncPairsCreatesAndDestroysContacts(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	reg := NewRegistry()
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}

	created, destroyed := reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })
	if len(created) != 1 {
		t.Fatalf("expected one contact created, got %d", len(created))
	}
	if len(destroyed) != 0 {
		t.Fatalf("expected nothing destroyed, got %d", len(destroyed))
	}

	// Re-announcing the same pair must not create a second contact.
	created2, _ := reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })
	if len(created2) != 0 {
		t.Fatalf("expected no duplicate contact on re-announced pair")
	}

	_, destroyed2 := reg.SyncPairs(nil, []broadphase.Pair{pair}, func(h idpool.Handle) *object.Shape { return lookup[h] })
	if len(destroyed2) != 1 {
		t.Fatalf("expected the contact to be destroyed when the pair is lost")
	}
}

func TestSyncPairsRejectsFilteredPair(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	a.Filter = object.Filter{CategoryBits: 1, MaskBits: 0}
	b.Filter = object.Filter{CategoryBits: 2, MaskBits: 0}
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	reg := NewRegistry()
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	created, _ := reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })
	if len(created) != 0 {
		t.Fatalf("expected filtered pair to not create a contact")
	}
}

func TestRefreshReportsBeginAndEndTouch(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	a.Flags.EnableContactEvents = true
	b.Flags.EnableContactEvents = true
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	bodyA := object.NewBody(a.BodyId, object.Dynamic)
	bodyB := object.NewBody(b.BodyId, object.Dynamic)
	bodyLookup := map[idpool.Handle]*object.Body{a.BodyId: bodyA, b.BodyId: bodyB}

	xfA := math2d.IdentityTransform
	xfB := math2d.Transform2{P: math2d.Vec2{X: 1.5, Y: 0}, Q: math2d.IdentityRot}

	reg := NewRegistry()
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })

	geomOf := func(h idpool.Handle) (object.Geometry, math2d.Transform2) {
		if h == a.Id {
			return a.Geometry, xfA
		}
		return b.Geometry, xfB
	}

	sims := reg.Refresh(geomOf, func(h idpool.Handle) *object.Shape { return lookup[h] }, func(h idpool.Handle) *object.Body { return bodyLookup[h] })
	if len(sims) != 1 {
		t.Fatalf("expected one touching ContactSim, got %d", len(sims))
	}
	begin, end := reg.DrainEvents()
	if len(begin) != 1 || len(end) != 0 {
		t.Fatalf("expected one begin-touch event, got begin=%d end=%d", len(begin), len(end))
	}

	// Move B far away: contact should stop touching and report end-touch.
	xfB = math2d.Transform2{P: math2d.Vec2{X: 100, Y: 0}, Q: math2d.IdentityRot}
	sims = reg.Refresh(geomOf, func(h idpool.Handle) *object.Shape { return lookup[h] }, func(h idpool.Handle) *object.Body { return bodyLookup[h] })
	if len(sims) != 0 {
		t.Fatalf("expected no touching contacts after separating, got %d", len(sims))
	}
	begin, end = reg.DrainEvents()
	if len(begin) != 0 || len(end) != 1 {
		t.Fatalf("expected one end-touch event, got begin=%d end=%d", len(begin), len(end))
	}
}

func TestRefreshCarriesOverWarmStartImpulsesAndInvMass(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	bodyA := object.NewBody(a.BodyId, object.Dynamic)
	bodyB := object.NewBody(b.BodyId, object.Dynamic)
	bodyB.InvMass = 0.5
	bodyLookup := map[idpool.Handle]*object.Body{a.BodyId: bodyA, b.BodyId: bodyB}

	xfA := math2d.IdentityTransform
	xfB := math2d.Transform2{P: math2d.Vec2{X: 1.5, Y: 0}, Q: math2d.IdentityRot}

	reg := NewRegistry()
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })

	geomOf := func(h idpool.Handle) (object.Geometry, math2d.Transform2) {
		if h == a.Id {
			return a.Geometry, xfA
		}
		return b.Geometry, xfB
	}
	shapeLookup := func(h idpool.Handle) *object.Shape { return lookup[h] }
	bodyFn := func(h idpool.Handle) *object.Body { return bodyLookup[h] }

	sims := reg.Refresh(geomOf, shapeLookup, bodyFn)
	if len(sims) != 1 {
		t.Fatalf("expected one touching ContactSim, got %d", len(sims))
	}
	if sims[0].InvMassB != 0.5 {
		t.Fatalf("expected the ContactSim to carry bodyB's InvMass, got %v", sims[0].InvMassB)
	}

	sims[0].Manifold.Points[0].NormalImpulse = 3.25

	// Re-write the touching contact's last-seen manifold by running
	// Refresh again with the same geometry: the next sim's point should
	// inherit the impulse the solver would have accumulated.
	reg.contacts[sims[0].ContactId].lastPoints = sims[0].Manifold.Points

	sims = reg.Refresh(geomOf, shapeLookup, bodyFn)
	if len(sims) != 1 {
		t.Fatalf("expected the contact to still be touching, got %d sims", len(sims))
	}
	if sims[0].Manifold.Points[0].NormalImpulse != 3.25 {
		t.Fatalf("expected the matching-id point's NormalImpulse to carry over, got %v", sims[0].Manifold.Points[0].NormalImpulse)
	}
}

// TestRefreshTouchingIncludesSpeculativeContact confirms a positive-
// separation point within the speculative margin is touching (spec
// §4.8, Glossary "Speculative contact") even though it is well past the
// old hardcoded 0.005 threshold this touching rule replaced.
func TestRefreshTouchingIncludesSpeculativeContact(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	bodyA := object.NewBody(a.BodyId, object.Dynamic)
	bodyB := object.NewBody(b.BodyId, object.Dynamic)
	bodyLookup := map[idpool.Handle]*object.Body{a.BodyId: bodyA, b.BodyId: bodyB}

	xfA := math2d.IdentityTransform
	// Separation = 2.015 - 2 = 0.015: past the old 0.005 cutoff, inside
	// SpeculativeDistance (4*linearSlop = 0.02).
	xfB := math2d.Transform2{P: math2d.Vec2{X: 2.015, Y: 0}, Q: math2d.IdentityRot}

	reg := NewRegistry()
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })

	geomOf := func(h idpool.Handle) (object.Geometry, math2d.Transform2) {
		if h == a.Id {
			return a.Geometry, xfA
		}
		return b.Geometry, xfB
	}
	sims := reg.Refresh(geomOf, func(h idpool.Handle) *object.Shape { return lookup[h] }, func(h idpool.Handle) *object.Body { return bodyLookup[h] })
	if len(sims) != 1 {
		t.Fatalf("expected the speculative contact to be touching, got %d sims", len(sims))
	}
}

// TestRefreshSuppressesContactViaPreSolveCallback checks spec §4.8 step
// 4: a pre-solve callback returning false clears the manifold and the
// contact does not appear in this step's ContactSims.
func TestRefreshSuppressesContactViaPreSolveCallback(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	a.Flags.EnablePreSolveEvents = true
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	bodyA := object.NewBody(a.BodyId, object.Dynamic)
	bodyB := object.NewBody(b.BodyId, object.Dynamic)
	bodyLookup := map[idpool.Handle]*object.Body{a.BodyId: bodyA, b.BodyId: bodyB}

	xfA := math2d.IdentityTransform
	xfB := math2d.Transform2{P: math2d.Vec2{X: 1.5, Y: 0}, Q: math2d.IdentityRot}

	var sawA, sawB idpool.Handle
	reg := NewRegistryWithCallbacks(Callbacks{
		PreSolve: func(shapeIdA, shapeIdB idpool.Handle, point, normal math2d.Vec2) bool {
			sawA, sawB = shapeIdA, shapeIdB
			return false
		},
	}, true)
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })

	geomOf := func(h idpool.Handle) (object.Geometry, math2d.Transform2) {
		if h == a.Id {
			return a.Geometry, xfA
		}
		return b.Geometry, xfB
	}
	sims := reg.Refresh(geomOf, func(h idpool.Handle) *object.Shape { return lookup[h] }, func(h idpool.Handle) *object.Body { return bodyLookup[h] })
	if len(sims) != 0 {
		t.Fatalf("expected pre-solve veto to suppress the contact, got %d sims", len(sims))
	}
	if sawA != a.Id || sawB != b.Id {
		t.Fatalf("expected pre-solve callback invoked with the pair's shape ids")
	}
}

// TestRefreshTrimsShallowPointWhenSpeculativeDisabled exercises spec
// §4.8 step 5: with speculative contacts disabled, a two-point manifold
// whose points both exceed 1.5*linearSlop separation is trimmed to one.
func TestRefreshTrimsShallowPointWhenSpeculativeDisabled(t *testing.T) {

	box := object.PolygonGeometry{
		Vertices: []math2d.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}},
		Normals:  []math2d.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	}
	floor := object.SegmentGeometry{Point1: math2d.Vec2{X: -20, Y: 0}, Point2: math2d.Vec2{X: 20, Y: 0}}

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, floor)
	b := newShape(bodies, shapes, box)
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	bodyA := object.NewBody(a.BodyId, object.Static)
	bodyB := object.NewBody(b.BodyId, object.Dynamic)
	bodyLookup := map[idpool.Handle]*object.Body{a.BodyId: bodyA, b.BodyId: bodyB}

	xfA := math2d.IdentityTransform
	// Box bottom edge at y=0.01: separation 0.01 > 1.5*linearSlop
	// (0.0075) on both corner points, and still within
	// SpeculativeDistance (0.02) so clipPolygons keeps both.
	xfB := math2d.Transform2{P: math2d.Vec2{X: 0, Y: 1.01}, Q: math2d.IdentityRot}

	reg := NewRegistryWithCallbacks(Callbacks{}, false)
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })

	geomOf := func(h idpool.Handle) (object.Geometry, math2d.Transform2) {
		if h == a.Id {
			return a.Geometry, xfA
		}
		return b.Geometry, xfB
	}
	sims := reg.Refresh(geomOf, func(h idpool.Handle) *object.Shape { return lookup[h] }, func(h idpool.Handle) *object.Body { return bodyLookup[h] })
	if len(sims) != 1 {
		t.Fatalf("expected one touching contact, got %d", len(sims))
	}
	if len(sims[0].Manifold.Points) != 1 {
		t.Fatalf("expected trimming to leave exactly one point, got %d", len(sims[0].Manifold.Points))
	}
}

// TestSyncPairsRejectsPairVetoedByCustomFilterCallback checks spec §6's
// customFilterCallback: consulted only after the category/mask/group
// gate already passed.
func TestSyncPairsRejectsPairVetoedByCustomFilterCallback(t *testing.T) {

	bodies := idpool.New(0)
	shapes := idpool.New(1)
	a := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	b := newShape(bodies, shapes, object.CircleGeometry{Radius: 1})
	lookup := map[idpool.Handle]*object.Shape{a.Id: a, b.Id: b}

	reg := NewRegistryWithCallbacks(Callbacks{
		CustomFilter: func(shapeIdA, shapeIdB idpool.Handle) bool { return false },
	}, true)
	pair := broadphase.Pair{ShapeA: a.Id, ShapeB: b.Id}
	created, _ := reg.SyncPairs([]broadphase.Pair{pair}, nil, func(h idpool.Handle) *object.Shape { return lookup[h] })
	if len(created) != 0 {
		t.Fatalf("expected customFilterCallback veto to block contact creation")
	}
}
