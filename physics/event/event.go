// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package event implements the world's double-buffered event queues (spec
// §4.12, C12): contactBegin/contactEnd/contactHit and sensorBegin/
// sensorEnd, each buffered across two arrays so a step's writes never
// race a user's read of the previous step's results.
//
// Modeled after the teacher's core.Dispatcher in spirit only — an event
// source decoupled from its consumers — but array-based rather than
// pub/sub, per spec §4.12's literal "arrays[endEventArrayIndex ^ 1]"
// double buffer instead of Dispatcher's named-event subscriber lists.
package event

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// ContactBeginTouchEvent is pushed the step a contact's manifold first
// reports touching (spec §4.12, fed by physics/contact.Registry.Refresh's
// BeginTouch list).
type ContactBeginTouchEvent struct {
	ContactId          idpool.Handle
	ShapeIdA, ShapeIdB idpool.Handle
}

// ContactEndTouchEvent is pushed the step a previously-touching contact
// stops touching (physics/contact.Registry.Refresh's EndTouch list), or
// when the contact itself is destroyed while still touching.
type ContactEndTouchEvent struct {
	ContactId          idpool.Handle
	ShapeIdA, ShapeIdB idpool.Handle
}

// ContactHitEvent is pushed at most once per step per contact, when a
// newly-persisted or new manifold point's impulse crosses the world's
// hit-event threshold (spec §4.12 "Hit events").
type ContactHitEvent struct {
	ShapeIdA, ShapeIdB idpool.Handle
	Point              math2d.Vec2
	Normal             math2d.Vec2
	ApproachSpeed      float64
}

// SensorBeginTouchEvent is the event shape for a sensor shape first
// overlapping a visitor shape. world.Step does not push it: touching
// transitions of FlagIsSensor contacts go to the contact begin/end
// queues like any other contact's.
type SensorBeginTouchEvent struct {
	SensorShapeId  idpool.Handle
	VisitorShapeId idpool.Handle
}

// SensorEndTouchEvent is pushed the step a sensor/visitor pair stops
// overlapping.
type SensorEndTouchEvent struct {
	SensorShapeId  idpool.Handle
	VisitorShapeId idpool.Handle
}

// DoubleBuffer holds one queue's two backing arrays and the index of the
// one currently being written, spec §4.12's "arrays[endEventArrayIndex ^
// 1]": write goes to buffers[write], and buffers[write^1] is last step's
// completed array — stable to read until the next Flip.
type DoubleBuffer[T any] struct {
	buffers [2][]T
	write   int
}

// Clear empties the buffer about to be filled this step (the write
// buffer), the step orchestrator's stage 1 "clear event buffers (buffer
// about to be filled)". It must run before any Push this step, and must
// not touch the other buffer — that one is still the prior step's stable
// read-only result.
func (d *DoubleBuffer[T]) Clear() {
	d.buffers[d.write] = d.buffers[d.write][:0]
}

// Push appends e to this step's write buffer.
func (d *DoubleBuffer[T]) Push(e T) {
	d.buffers[d.write] = append(d.buffers[d.write], e)
}

// Stable returns the buffer that is not being written this step — the
// previous step's completed array, the one a user reads during this
// step's preparation per spec §4.12.
func (d *DoubleBuffer[T]) Stable() []T {
	return d.buffers[d.write^1]
}

// Flip swaps which buffer is the write buffer, the step orchestrator's
// stage 12 "flip event buffer index". After Flip, this step's now-full
// array becomes Stable for the next step, and the array that was Stable
// this step becomes the new write target (cleared on the next step's
// Clear, not here — a reader may still be draining it between steps).
func (d *DoubleBuffer[T]) Flip() {
	d.write ^= 1
}

// Queues is the complete set of per-world event queues spec §4.12 names.
type Queues struct {
	ContactBegin DoubleBuffer[ContactBeginTouchEvent]
	ContactEnd   DoubleBuffer[ContactEndTouchEvent]
	ContactHit   DoubleBuffer[ContactHitEvent]
	SensorBegin  DoubleBuffer[SensorBeginTouchEvent]
	SensorEnd    DoubleBuffer[SensorEndTouchEvent]
}

// ClearWriteBuffers clears every queue's write buffer, the orchestrator's
// stage 1.
func (q *Queues) ClearWriteBuffers() {
	q.ContactBegin.Clear()
	q.ContactEnd.Clear()
	q.ContactHit.Clear()
	q.SensorBegin.Clear()
	q.SensorEnd.Clear()
}

// Flip flips every queue's write index, the orchestrator's stage 12.
func (q *Queues) Flip() {
	q.ContactBegin.Flip()
	q.ContactEnd.Flip()
	q.ContactHit.Flip()
	q.SensorBegin.Flip()
	q.SensorEnd.Flip()
}

// DetectHit reports spec §4.12's hit test for one contact this step:
// "when totalNormalImpulse * invH > threshold on a newly-persisted or new
// point of a contact whose shapes opted in, a ContactHitEvent is pushed
// once per step per contact". totalNormalImpulse is the sum of every
// manifold point's NormalImpulse after this step's solve; enabled gates
// the whole test on the contact's FlagEnableHitEvents (already combined
// from both shapes by physics/contact.NewContact). Returns hit=false if
// not enabled, the contact has no points, or the threshold isn't crossed.
func DetectHit(sim *contact.ContactSim, shapeIdA, shapeIdB idpool.Handle, enabled bool, invH, threshold float64) (ContactHitEvent, bool) {

	if !enabled || len(sim.Manifold.Points) == 0 {
		return ContactHitEvent{}, false
	}

	var total float64
	for _, p := range sim.Manifold.Points {
		total += p.NormalImpulse
	}
	if total*invH <= threshold {
		return ContactHitEvent{}, false
	}

	p := sim.Manifold.Points[0]
	return ContactHitEvent{
		ShapeIdA:      shapeIdA,
		ShapeIdB:      shapeIdB,
		Point:         p.Point,
		Normal:        sim.Manifold.Normal,
		ApproachSpeed: -p.RelativeVelocity,
	}, true
}
