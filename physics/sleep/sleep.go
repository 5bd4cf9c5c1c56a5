// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sleep implements the sleep manager (spec §4.11, C11): each
// awake body accumulates sleepTime while its motion stays below the
// linear/angular tolerances, and an island goes to sleep only once every
// one of its member bodies has stayed quiet for TimeToSleep seconds.
//
// Grounded on the teacher's physics/body.go SleepTick (an
// Awake/Sleepy/Sleeping state machine driven by a squared-speed
// threshold and a timeLastSleepy/sleepTimeLimit timer), generalized from
// a single body's own three-state machine into a per-body sleepTime
// accumulator (Tick) plus a separate island-level aggregate test
// (Candidate), since spec §4.11 sleeps and wakes an entire island at
// once rather than one body independently of its neighbors.
package sleep

import (
	"math"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/island"
	"github.com/gophysics/kinetic2d/physics/object"
)

const (
	// LinearTolerance and AngularTolerance are the eps_v/eps_w "quiet"
	// thresholds spec §4.11 compares a body's velocity against —
	// the two halves of the teacher's single combined sleepSpeedLimit
	// (there `velocity.LengthSq() + angularVelocity.LengthSq()` against
	// one limit squared; spec names separate linear/angular tolerances,
	// so they are split here instead of combined).
	LinearTolerance  = 0.01 // m/s
	AngularTolerance = 0.05 // rad/s

	// TimeToSleep is spec §4.11's fixed island-candidacy threshold (the
	// teacher's per-body sleepTimeLimit, fixed to spec's named constant
	// instead of per-body configurable).
	TimeToSleep = 0.5
)

// Tick advances b's sleepTime by dt when its velocity is under
// tolerance, and resets it to zero otherwise (spec §4.11's
// accumulate-or-reset rule) — the per-body half of the teacher's
// SleepTick, generalized from its three explicit states into the plain
// accumulator spec §4.11 names directly. Static and kinematic bodies,
// and bodies with EnableSleep false, never accumulate.
func Tick(b *object.Body, dt float64) {

	if b.Type != object.Dynamic || !b.EnableSleep {
		b.SleepTime = 0
		return
	}

	quiet := b.LinearVelocity.LengthSq() < LinearTolerance*LinearTolerance &&
		math.Abs(b.AngularVelocity) < AngularTolerance

	if quiet {
		b.SleepTime += dt
	} else {
		b.SleepTime = 0
	}
}

// BodyLookup resolves a body id to its Body record, the same resolver
// shape physics/contact.BodyLookup establishes.
type BodyLookup func(idpool.Handle) *object.Body

// Candidate reports whether every member of isl has been quiet for more
// than TimeToSleep, spec §4.11's "An island is a sleep candidate iff
// every body has sleepTime > 0.5s". An island with no members is never
// a candidate.
func Candidate(isl island.Island, bodies BodyLookup) bool {

	if len(isl.Members) == 0 {
		return false
	}
	for _, id := range isl.Members {
		b := bodies(id)
		if b == nil || b.SleepTime <= TimeToSleep {
			return false
		}
	}
	return true
}

// Put puts every member of isl to sleep: velocities are zeroed, the same
// way the teacher's Body.Sleep does ("b.velocity.Set(0,0,0);
// b.angularVelocity.Set(0,0,0)") so a sleeping body carries no residual
// motion for a later wake to resume from. sleepTime is left untouched —
// a body already past TimeToSleep should still read as a sleep candidate
// if its island is briefly disturbed and re-evaluated.
//
// Migrating the island's bodies, contacts and joints into a fresh
// sleeping SolverSet and dropping its constraints from the graph
// coloring (spec §4.11 "removes its constraints from the graph
// coloring") is the caller's job — the future world/C13 orchestrator, via
// physics/solverset — since this package has no SolverSet of its own to
// migrate into; Put only owns the per-body state change spec §4.11
// names directly.
func Put(isl island.Island, bodies BodyLookup) {

	for _, id := range isl.Members {
		b := bodies(id)
		if b == nil {
			continue
		}
		b.LinearVelocity = math2d.Vec2{}
		b.AngularVelocity = 0
	}
}

// Wake resets every member of isl's sleepTime to zero, the disturbance
// spec §4.11 names ("force applied, contact created, joint mutated")
// that migrates a sleeping island back to the awake set — the teacher's
// WakeUp generalized from one body to the whole island spec §4.11 wakes
// together. As with Put, the actual SolverSet migration back to the
// awake set is the caller's job; Wake only resets the state that would
// otherwise let the island re-qualify as a sleep candidate on the very
// next tick.
func Wake(isl island.Island, bodies BodyLookup) {

	for _, id := range isl.Members {
		if b := bodies(id); b != nil {
			b.SleepTime = 0
		}
	}
}
