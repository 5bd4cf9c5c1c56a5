package sleep

import (
	"testing"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/island"
	"github.com/gophysics/kinetic2d/physics/object"
)

func newDynamic(ids *idpool.Pool) *object.Body {
	b := object.NewBody(ids.Alloc(), object.Dynamic)
	return b
}

func TestTickAccumulatesWhileQuiet(t *testing.T) {

	ids := idpool.New(0)
	b := newDynamic(ids)

	Tick(b, 0.3)
	Tick(b, 0.3)

	if b.SleepTime != 0.6 {
		t.Fatalf("expected sleepTime to accumulate to 0.6, got %v", b.SleepTime)
	}
}

func TestTickResetsWhenMoving(t *testing.T) {

	ids := idpool.New(0)
	b := newDynamic(ids)
	b.SleepTime = 1.0
	b.LinearVelocity = math2d.Vec2{X: 5}

	Tick(b, 0.1)

	if b.SleepTime != 0 {
		t.Fatalf("expected sleepTime reset once moving above tolerance, got %v", b.SleepTime)
	}
}

func TestTickIgnoresStaticAndDisabledBodies(t *testing.T) {

	ids := idpool.New(0)
	static := object.NewBody(ids.Alloc(), object.Static)
	static.SleepTime = 2

	Tick(static, 0.5)
	if static.SleepTime != 0 {
		t.Fatalf("expected a static body's sleepTime zeroed, got %v", static.SleepTime)
	}

	noSleep := newDynamic(ids)
	noSleep.EnableSleep = false
	noSleep.SleepTime = 2

	Tick(noSleep, 0.5)
	if noSleep.SleepTime != 0 {
		t.Fatalf("expected an EnableSleep=false body's sleepTime zeroed, got %v", noSleep.SleepTime)
	}
}

func TestCandidateRequiresEveryMemberPastThreshold(t *testing.T) {

	ids := idpool.New(0)
	a := newDynamic(ids)
	b := newDynamic(ids)
	a.SleepTime = 0.6
	b.SleepTime = 0.4 // under TimeToSleep

	lookup := map[idpool.Handle]*object.Body{a.Id: a, b.Id: b}
	fn := func(id idpool.Handle) *object.Body { return lookup[id] }

	isl := island.Island{Members: []idpool.Handle{a.Id, b.Id}}
	if Candidate(isl, fn) {
		t.Fatalf("expected the island not a sleep candidate while one member is still under threshold")
	}

	b.SleepTime = 0.6
	if !Candidate(isl, fn) {
		t.Fatalf("expected the island a sleep candidate once every member clears TimeToSleep")
	}
}

func TestPutZeroesVelocityWithoutTouchingSleepTime(t *testing.T) {

	ids := idpool.New(0)
	a := newDynamic(ids)
	a.SleepTime = 0.9
	a.LinearVelocity = math2d.Vec2{X: 1, Y: 2}
	a.AngularVelocity = 3

	lookup := map[idpool.Handle]*object.Body{a.Id: a}
	fn := func(id idpool.Handle) *object.Body { return lookup[id] }

	Put(island.Island{Members: []idpool.Handle{a.Id}}, fn)

	if a.LinearVelocity != (math2d.Vec2{}) || a.AngularVelocity != 0 {
		t.Fatalf("expected velocity zeroed by Put, got v=%v w=%v", a.LinearVelocity, a.AngularVelocity)
	}
	if a.SleepTime != 0.9 {
		t.Fatalf("expected sleepTime left untouched by Put, got %v", a.SleepTime)
	}
}

func TestWakeResetsSleepTime(t *testing.T) {

	ids := idpool.New(0)
	a := newDynamic(ids)
	a.SleepTime = 5

	lookup := map[idpool.Handle]*object.Body{a.Id: a}
	fn := func(id idpool.Handle) *object.Body { return lookup[id] }

	Wake(island.Island{Members: []idpool.Handle{a.Id}}, fn)

	if a.SleepTime != 0 {
		t.Fatalf("expected sleepTime reset by Wake, got %v", a.SleepTime)
	}
}
