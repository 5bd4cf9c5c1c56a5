// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import (
	"sort"

	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/broadphase"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/event"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/island"
	"github.com/gophysics/kinetic2d/physics/joint"
	"github.com/gophysics/kinetic2d/physics/object"
	"github.com/gophysics/kinetic2d/physics/sleep"
	"github.com/gophysics/kinetic2d/physics/solver"
	"github.com/gophysics/kinetic2d/physics/toi"
)

// Step runs spec §4.13's twelve-stage pipeline once. It returns
// ErrLocked if called re-entrantly (impossible from single-goroutine Go
// code but kept for API parity with spec §7's "locked" error kind) and
// ErrCorrupt once the world has been marked corrupt.
//
// Grounded on the teacher's Simulation.internalStep (force application
// -> broad-phase -> prune -> generate contacts -> emit events -> wake ->
// solve -> apply -> damp -> integrate -> clear forces), reordered and
// extended to match spec §4.13's component sequence exactly: this core
// has no separate "apply damping" stage (damping is folded into
// solver.PrepareBody, spec §4.9) and adds island/graph/TOI/sleep/event
// stages the teacher's flat rigid-body simulation never needed.
func (w *World) Step(dt float64, substepCount int) error {

	if w.corrupt {
		return ErrCorrupt
	}
	if w.inStep {
		return ErrLocked
	}
	if dt <= 0 || substepCount <= 0 {
		return ErrInvalidArgument
	}

	w.inStep = true
	defer func() { w.inStep = false }()

	// 1. Clear event buffers (spec step 1): the write-side buffer, which
	// became the stable side at the end of the previous step's flip, is
	// cleared so this step's events don't mix with the one two steps ago.
	w.queues.ClearWriteBuffers()

	// 2. External forces: this core's only standing external input is
	// gravity (scaled per-body by GravityScale), applied inside
	// solver.PrepareBody each substep (spec §4.9). There is no
	// host-supplied per-step force callback wired up here (WorldDef
	// carries no such Go func field — see DESIGN.md).

	// 3. Broad-phase update: move every non-static body's shape proxies,
	// collect move+pair events. Computing each shape's tight AABB is pure
	// (reads only that shape's geometry and its body's transform), so it
	// is the one stage this core hands to w.tasks — spec §5's "tasks
	// within one pipeline stage are independent by construction"; only
	// the tree mutation itself (MoveProxy) stays single-threaded after
	// the barrier, since the tree is shared mutable state.
	type movedShape struct {
		id    idpool.Handle
		tight math2d.AABB
	}
	var moving []movedShape
	for _, b := range w.bodies {
		if b.Type == object.Static {
			continue
		}
		for sid, s := range w.shapes {
			if s.BodyId != b.Id {
				continue
			}
			moving = append(moving, movedShape{id: sid})
			_ = s
		}
	}
	sort.Slice(moving, func(i, j int) bool { return moving[i].id.Index1 < moving[j].id.Index1 })

	w.tasks.Run(len(moving), func(start, end int) {
		for i := start; i < end; i++ {
			sid := moving[i].id
			s := w.shapes[sid]
			b := w.bodies[s.BodyId]
			moving[i].tight = w.shapeAABB(b, s)
		}
	})

	for _, m := range moving {
		s := w.shapes[m.id]
		s.FatAABB = m.tight.Extend(broadphase.FatMargin)
		w.tree.MoveProxy(m.id, m.tight)
	}
	moved := w.tree.MoveEvents()
	newPairs, lostPairs := w.tree.PairEvents(moved)

	// A newly formed pair touching a sleeping body is this core's "stack
	// wake" trigger (spec §8 scenario 4): wake its whole island before
	// contacts are synced, so the woken bodies take part in this very
	// step instead of one step late.
	for _, p := range newPairs {
		sa, sb := w.shapes[p.ShapeA], w.shapes[p.ShapeB]
		if sa == nil || sb == nil {
			continue
		}
		w.wakeBody(sa.BodyId)
		w.wakeBody(sb.BodyId)
	}

	// 4/5. Lost pairs destroy their Contact, new pairs create one
	// (spec §4.4's pairSet-gated createContact/destroyContact).
	w.contacts.SyncPairs(newPairs, lostPairs, w.shapeLookup)

	// 6. Narrow-phase refresh (C8, spec §4.8): re-evaluate every live
	// contact's manifold and touching transition.
	contactSims := w.contacts.Refresh(w.geomLookup, w.shapeLookup, w.bodyLookup)

	begin, end := w.contacts.DrainEvents()
	for _, id := range begin {
		if c := w.contacts.Get(id); c != nil {
			w.queues.ContactBegin.Push(event.ContactBeginTouchEvent{ContactId: id, ShapeIdA: c.ShapeIdA, ShapeIdB: c.ShapeIdB})
		}
	}
	for _, id := range end {
		if c := w.contacts.Get(id); c != nil {
			w.queues.ContactEnd.Push(event.ContactEndTouchEvent{ContactId: id, ShapeIdA: c.ShapeIdA, ShapeIdB: c.ShapeIdB})
		}
	}

	// Every awake dynamic body takes part in this step regardless of
	// whether it currently touches anything (spec §4.6 "every awake
	// dynamic body belongs to exactly one island, even with no
	// contacts"). Static/kinematic bodies are added to the solver's
	// Input only when a touching contact or enabled joint actually
	// needs them (mirrors physics/solver/gs_test.go's pattern of
	// listing the static floor explicitly alongside the dynamic box).
	bodySet := make(map[idpool.Handle]*object.Body)
	for id, b := range w.bodies {
		if b.Type == object.Dynamic && !w.sleeping[id] {
			bodySet[id] = b
		}
	}

	isAwakeDynamic := func(id idpool.Handle) bool {
		b := w.bodies[id]
		return b != nil && b.Type == object.Dynamic && !w.sleeping[id]
	}
	contactActive := func(cs *contact.ContactSim) bool {
		dynA, dynB := w.bodies[cs.BodyIdA], w.bodies[cs.BodyIdB]
		if dynA != nil && dynA.Type == object.Dynamic && w.sleeping[cs.BodyIdA] {
			return false
		}
		if dynB != nil && dynB.Type == object.Dynamic && w.sleeping[cs.BodyIdB] {
			return false
		}
		return isAwakeDynamic(cs.BodyIdA) || isAwakeDynamic(cs.BodyIdB)
	}

	activeContacts := contactSims[:0]
	for _, cs := range contactSims {
		if !contactActive(cs) {
			continue
		}
		activeContacts = append(activeContacts, cs)
		if b := w.bodies[cs.BodyIdA]; b != nil {
			bodySet[cs.BodyIdA] = b
		}
		if b := w.bodies[cs.BodyIdB]; b != nil {
			bodySet[cs.BodyIdB] = b
		}
	}

	h := dt / float64(substepCount)
	activeJoints := w.prepareActiveJoints(isAwakeDynamic, bodySet, h)

	bodies := make([]*object.Body, 0, len(bodySet))
	for _, b := range bodySet {
		bodies = append(bodies, b)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].Id.Index1 < bodies[j].Id.Index1 })

	// 7. Island merges/splits (C6, spec §4.6): union every touching
	// dynamic-dynamic contact/joint edge, rebuilt fresh each step
	// (splits fall out of Build naturally since only this step's live
	// edges are unioned).
	w.islands.Reset()
	for id := range bodySet {
		if isAwakeDynamic(id) {
			w.islands.AddBody(id)
		}
	}
	var edges []island.Edge
	for _, cs := range activeContacts {
		if isAwakeDynamic(cs.BodyIdA) && isAwakeDynamic(cs.BodyIdB) {
			edges = append(edges, island.Edge{BodyA: cs.BodyIdA, BodyB: cs.BodyIdB})
		}
	}
	for _, js := range activeJoints {
		if isAwakeDynamic(js.BodyIdA) && isAwakeDynamic(js.BodyIdB) {
			edges = append(edges, island.Edge{BodyA: js.BodyIdA, BodyB: js.BodyIdB})
		}
	}
	islands := w.islands.Build(edges)
	w.lastIslands = islands

	// 8/9. Graph coloring (C7) and the substepped solve (C9) both live
	// inside solver.Solve; this orchestrator only assembles its Input.
	in := solver.Input{
		Bodies:               bodies,
		Contacts:             activeContacts,
		Joints:               activeJoints,
		Gravity:              w.def.Gravity,
		SubstepCount:         substepCount,
		RestitutionThreshold: w.def.RestitutionThreshold,
	}
	states, contactConstraints := solver.Solve(in, dt)

	// 10. Continuous collision (C10, spec §4.10): run before WriteBack,
	// since SweepFromBody must read each bullet's BodyState delta before
	// it is overwritten (see physics/solver.Solve's own doc comment).
	var impacts map[idpool.Handle]toi.Result
	if w.def.EnableContinuous {
		impacts = w.runContinuous(bodies, states)
	}

	for _, b := range bodies {
		solver.WriteBack(b, states[b.Id])
	}
	solver.WriteBackContactImpulses(activeContacts, contactConstraints)

	for id, result := range impacts {
		if b := w.bodies[id]; b != nil {
			toi.ApplyImpact(b, result.Normal, 0)
		}
	}

	invH := 0.0
	if h > 0 {
		invH = 1 / h
	}
	for _, cs := range activeContacts {
		c := w.contacts.Get(cs.ContactId)
		if c == nil || c.Flags&contact.FlagEnableHitEvents == 0 {
			continue
		}
		if hitEvt, ok := event.DetectHit(cs, c.ShapeIdA, c.ShapeIdB, true, invH, w.def.HitEventThreshold); ok {
			w.queues.ContactHit.Push(hitEvt)
		}
	}

	// 11. Sleep update (C11, spec §4.11): tick every awake dynamic body,
	// then put to sleep any island whose every member has been quiet for
	// long enough.
	if w.def.EnableSleep {
		for _, b := range bodies {
			if b.Type == object.Dynamic && !w.sleeping[b.Id] {
				sleep.Tick(b, dt)
			}
		}
		for _, isl := range islands {
			if !sleep.Candidate(isl, w.bodyLookup) {
				continue
			}
			allEnabled := true
			for _, m := range isl.Members {
				if b := w.bodies[m]; b != nil && !b.EnableSleep {
					allEnabled = false
					break
				}
			}
			if !allEnabled {
				continue
			}
			sleep.Put(isl, w.bodyLookup)
			for _, m := range isl.Members {
				w.sleeping[m] = true
				w.islands.RemoveBody(m)
			}
			log.Debug("put island of %d bodies to sleep", len(isl.Members))
		}
	}

	// 12. Flip event buffer index: what Step just wrote becomes readable
	// via Stable(); the buffer Step will write into next time is cleared
	// at the top of the next call.
	w.queues.Flip()

	return nil
}

// prepareActiveJoints prepares a JointSim for every enabled joint that
// touches at least one awake dynamic body, mirroring contactActive's
// rule for contacts, and records each referenced body (including a
// static/kinematic far end) in bodySet.
func (w *World) prepareActiveJoints(isAwakeDynamic func(idpool.Handle) bool, bodySet map[idpool.Handle]*object.Body, h float64) []*joint.JointSim {

	var sims []*joint.JointSim
	joints := w.joints.All()
	sort.Slice(joints, func(i, j int) bool { return joints[i].Id.Index1 < joints[j].Id.Index1 })
	for _, j := range joints {
		a, b := w.bodies[j.BodyIdA], w.bodies[j.BodyIdB]
		if a == nil || b == nil {
			continue
		}
		if !isAwakeDynamic(j.BodyIdA) && !isAwakeDynamic(j.BodyIdB) {
			continue
		}

		frameA := joint.BodyFrame{Center: a.WorldCenter(), Rotation: a.Transform.Q, InvMass: a.InvMass, InvInertia: a.InvInertia}
		frameB := joint.BodyFrame{Center: b.WorldCenter(), Rotation: b.Transform.Q, InvMass: b.InvMass, InvInertia: b.InvInertia}
		sims = append(sims, joint.Prepare(j, frameA, frameB, h))
		bodySet[j.BodyIdA] = a
		bodySet[j.BodyIdB] = b
	}
	return sims
}

// runContinuous clamps every bullet body's solved BodyState to its first
// swept impact against the broad-phase's other shapes (spec §4.10 steps
// 1-4), then applies the post-clamp velocity response.
func (w *World) runContinuous(bodies []*object.Body, states map[idpool.Handle]*solver.BodyState) map[idpool.Handle]toi.Result {

	impacts := make(map[idpool.Handle]toi.Result)
	for _, b := range bodies {
		if !b.IsBullet || b.Type != object.Dynamic {
			continue
		}
		state := states[b.Id]
		if state == nil {
			continue
		}

		sweep := toi.SweepFromBody(b, state)
		sweep = toi.ClampAngularDisplacement(sweep, b.AllowFastRotation, false)

		var candidates []toi.Candidate
		for sid, s := range w.shapes {
			if s.BodyId == b.Id {
				continue
			}
			other := w.bodies[s.BodyId]
			if other == nil {
				continue
			}
			otherState := states[s.BodyId]
			var otherSweep math2d.Sweep
			if otherState != nil {
				otherSweep = toi.SweepFromBody(other, otherState)
			} else {
				c := other.WorldCenter()
				otherSweep = math2d.Sweep{LocalCenter: other.LocalCenter, C1: c, C2: c, Q1: other.Transform.Q, Q2: other.Transform.Q}
			}
			candidates = append(candidates, toi.Candidate{ShapeId: sid, BodyId: s.BodyId, Geometry: s.Geometry, Sweep: otherSweep})
		}

		var bulletGeom object.Geometry
		for _, s := range w.shapes {
			if s.BodyId == b.Id {
				bulletGeom = s.Geometry
				break
			}
		}
		if bulletGeom == nil {
			continue
		}

		result := toi.Resolve(sweep, bulletGeom, candidates)
		if !result.Hit {
			continue
		}

		clampStateToFraction(sweep, state, result.T)
		impacts[b.Id] = result
	}
	return impacts
}

// clampStateToFraction rewrites state's DeltaPosition/DeltaRotation so
// WriteBack lands the body exactly at sweep's fraction t instead of its
// originally solved endpoint (sweep.Q1/C1 is the body's transform at the
// top of the step, matching how SweepFromBody built sweep from state in
// the first place).
func clampStateToFraction(sweep math2d.Sweep, state *solver.BodyState, t float64) {

	xf := sweep.Interpolate(t)
	state.DeltaPosition = math2d.Sub2(math2d.Add2(xf.P, math2d.RotateVec(xf.Q, sweep.LocalCenter)), sweep.C1)
	state.DeltaRotation = math2d.InvMulRot(sweep.Q1, xf.Q)
}
