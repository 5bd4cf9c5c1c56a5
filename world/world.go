// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package world is the Step Orchestrator (spec §4.13, C13): it owns
// every body, shape and joint, sequences a step across the other twelve
// components (C3→C4→C8→C6→C7→C9→C10→C11→C12), and is the only package
// that imports all of them.
//
// Grounded on the teacher's physics.Simulation (AddBody/RemoveBody/
// Step/internalStep own-everything shape) and on akmonengine-feather's
// World.Step (the phase-commented, phase-per-component body this
// package's Step follows most closely — see step.go).
package world

import (
	"errors"
	"sort"

	"github.com/gophysics/kinetic2d/config"
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/broadphase"
	"github.com/gophysics/kinetic2d/physics/contact"
	"github.com/gophysics/kinetic2d/physics/event"
	"github.com/gophysics/kinetic2d/physics/idpool"
	"github.com/gophysics/kinetic2d/physics/island"
	"github.com/gophysics/kinetic2d/physics/joint"
	"github.com/gophysics/kinetic2d/physics/object"
	"github.com/gophysics/kinetic2d/physics/sleep"
	"github.com/gophysics/kinetic2d/util/logger"
)

var log = logger.New("WORLD", logger.Default)

// Sentinel errors realize spec §7's error kinds. stale/invalid-argument
// are also signaled in-band (a documented zero value) where the spec
// calls for it; these are returned wherever a Go error return is the
// more idiomatic shape.
var (
	ErrStale           = errors.New("kinetic2d/world: stale handle")
	ErrInvalidArgument = errors.New("kinetic2d/world: invalid argument")
	ErrLocked          = errors.New("kinetic2d/world: world is locked (inStep)")
	ErrCorrupt         = errors.New("kinetic2d/world: world is corrupt")
)

// World is the sole owner of every body, shape and joint (spec §9
// "Generational handles instead of owning pointers"). Zero value is not
// usable; construct with New.
type World struct {
	def config.WorldDef

	bodyPool  *idpool.Pool
	shapePool *idpool.Pool

	bodies map[idpool.Handle]*object.Body
	shapes map[idpool.Handle]*object.Shape

	contacts *contact.Registry
	joints   *joint.Registry
	tree     *broadphase.Tree
	islands  *island.Builder

	// sleeping holds every dynamic body currently parked in the asleep
	// solver set (spec §4.11/§4.2's "Solver Sets"; a dedicated
	// physics/solverset.Array per awake/sleeping island is the fuller
	// realization — this map is the minimal form Step actually needs to
	// decide who gets skipped each step).
	sleeping map[idpool.Handle]bool

	// lastIslands is the island partition Step computed last time it
	// ran, kept so a new touching pair discovered against a sleeping
	// body (the "stack wake" scenario) can find and wake that body's
	// whole island without rebuilding it from scratch; DumpIslands
	// also reads it.
	lastIslands []island.Island

	queues event.Queues

	tasks TaskRunner

	inStep  bool
	corrupt bool
}

// Options carries the host-supplied callbacks spec §6 names that have
// no YAML representation (frictionCallback, restitutionCallback,
// preSolveCallback, customFilterCallback): config.WorldDef only covers
// the YAML-loadable scalar tuning and body templates (see
// config/worlddef.go), so these stay Go-only, set on an Options value
// passed to NewWithOptions. A zero Options is New's "no callbacks"
// default.
type Options struct {
	FrictionCallback     contact.FrictionCallback
	RestitutionCallback  contact.RestitutionCallback
	PreSolveCallback     contact.PreSolveCallback
	CustomFilterCallback contact.CustomFilterCallback
}

// New creates a world from a WorldDef (spec §6 `createWorld(def)`) with
// no host callbacks beyond the defaults NewWithOptions(def, Options{})
// already applies.
func New(def config.WorldDef) *World {

	return NewWithOptions(def, Options{})
}

// NewWithOptions is New plus the host callback bundle spec §6 names.
func NewWithOptions(def config.WorldDef, opts Options) *World {

	w := &World{
		def:       def,
		bodyPool:  idpool.New(0),
		shapePool: idpool.New(1),
		bodies:    make(map[idpool.Handle]*object.Body),
		shapes:    make(map[idpool.Handle]*object.Shape),
		contacts: contact.NewRegistryWithCallbacks(contact.Callbacks{
			Friction:     opts.FrictionCallback,
			Restitution:  opts.RestitutionCallback,
			PreSolve:     opts.PreSolveCallback,
			CustomFilter: opts.CustomFilterCallback,
		}, def.EnableSpeculative),
		joints:   joint.NewRegistry(),
		tree:     broadphase.NewTree(),
		islands:  island.NewBuilder(),
		sleeping: make(map[idpool.Handle]bool),
	}
	w.tasks = NewTaskRunner(def.WorkerCount)
	return w
}

// Destroy releases a world. Go's garbage collector reclaims everything
// once the last reference is dropped; Destroy exists to mirror spec §6's
// `destroyWorld(worldHandle)` capability and to guard against further use
// the way a C core's freed handle would.
func (w *World) Destroy() {

	log.Info("world destroyed: %d bodies, %d shapes, %d joints", len(w.bodies), len(w.shapes), w.joints.Len())
	w.corrupt = true
}

func (w *World) checkMutable() error {

	if w.corrupt {
		return ErrCorrupt
	}
	if w.inStep {
		return ErrLocked
	}
	return nil
}

// CreateBody materializes a config.BodyDef (spec §6 body `create`),
// registering its shapes with the broad-phase tree.
func (w *World) CreateBody(def config.BodyDef) (idpool.Handle, error) {

	if err := w.checkMutable(); err != nil {
		return idpool.Handle{}, err
	}

	b, shapes, err := config.Build(def, w.bodyPool, w.shapePool)
	if err != nil {
		return idpool.Handle{}, err
	}

	w.bodies[b.Id] = b
	for _, s := range shapes {
		w.shapes[s.Id] = s
		tight := w.shapeAABB(b, s)
		s.FatAABB = tight.Extend(broadphase.FatMargin)
		w.tree.CreateProxy(s.Id, tight)
	}
	return b.Id, nil
}

// GetBody returns the body for id, or (nil, false) if id is stale (spec
// §7 "stale ... no-op returning a documented sentinel").
func (w *World) GetBody(id idpool.Handle) (*object.Body, bool) {

	b, ok := w.bodies[id]
	return b, ok
}

// SetBody is the general `set` capability spec §6 names: the caller
// mutates the Body it got from GetBody directly (it is a live pointer,
// matching this codebase's "the world is the sole owner" model, spec §9)
// and SetBody only exists to validate the handle is still current.
func (w *World) SetBody(id idpool.Handle, mutate func(*object.Body)) error {

	if err := w.checkMutable(); err != nil {
		return err
	}
	b, ok := w.bodies[id]
	if !ok {
		return ErrStale
	}
	mutate(b)
	return nil
}

// DestroyBody removes a body and every shape/contact/joint attached to
// it. Destroying a stale handle is a no-op (spec §7).
func (w *World) DestroyBody(id idpool.Handle) error {

	if err := w.checkMutable(); err != nil {
		return err
	}
	b, ok := w.bodies[id]
	if !ok {
		return nil
	}

	for sid, s := range w.shapes {
		if s.BodyId == id {
			w.tree.DestroyProxy(sid)
			delete(w.shapes, sid)
			w.shapePool.Free(sid)
		}
	}
	w.joints.ForEachOnBody(id, func(j *joint.Joint) { w.joints.Destroy(j.Id) })

	delete(w.bodies, id)
	delete(w.sleeping, id)
	w.islands.RemoveBody(id)
	w.bodyPool.Free(b.Id)
	return nil
}

// EnumerateBodies returns every live body, in id order (spec §6
// `enumerate`; deterministic order matches spec §5's "Ordering
// guarantees").
func (w *World) EnumerateBodies() []*object.Body {

	out := make([]*object.Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Index1 < out[j].Id.Index1 })
	return out
}

// GetShape / EnumerateShapes mirror the body accessors for spec §6's
// shape `get`/`enumerate`.
func (w *World) GetShape(id idpool.Handle) (*object.Shape, bool) {

	s, ok := w.shapes[id]
	return s, ok
}

func (w *World) EnumerateShapes() []*object.Shape {

	out := make([]*object.Shape, 0, len(w.shapes))
	for _, s := range w.shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Index1 < out[j].Id.Index1 })
	return out
}

// CreateJoint registers a joint between two live bodies (spec §6 joint
// `create`; spec §4.5 "Joint Lifecycle").
func (w *World) CreateJoint(t joint.Type, bodyA, bodyB idpool.Handle, frameA, frameB joint.Frame) (idpool.Handle, error) {

	if err := w.checkMutable(); err != nil {
		return idpool.Handle{}, err
	}
	if _, ok := w.bodies[bodyA]; !ok {
		return idpool.Handle{}, ErrInvalidArgument
	}
	if _, ok := w.bodies[bodyB]; !ok {
		return idpool.Handle{}, ErrInvalidArgument
	}
	j := w.joints.Create(t, bodyA, bodyB, frameA, frameB)
	w.wakeBody(bodyA)
	w.wakeBody(bodyB)
	return j.Id, nil
}

// GetJoint / DestroyJoint / EnumerateJoints complete spec §6's joint
// `get`/`destroy`/`enumerate`.
func (w *World) GetJoint(id idpool.Handle) (*joint.Joint, bool) {

	j := w.joints.Get(id)
	return j, j != nil
}

func (w *World) DestroyJoint(id idpool.Handle) error {

	if err := w.checkMutable(); err != nil {
		return err
	}
	if j := w.joints.Get(id); j != nil {
		w.wakeBody(j.BodyIdA)
		w.wakeBody(j.BodyIdB)
	}
	w.joints.Destroy(id)
	return nil
}

func (w *World) EnumerateJoints() []*joint.Joint {

	out := w.joints.All()
	sort.Slice(out, func(i, j int) bool { return out[i].Id.Index1 < out[j].Id.Index1 })
	return out
}

// shapeAABB computes a shape's tight world-space AABB from its owning
// body's current transform, the input CreateProxy/MoveProxy fatten by
// broadphase.FatMargin (spec §4.3's "fat AABB").
func (w *World) shapeAABB(b *object.Body, s *object.Shape) math2d.AABB {

	return math2d.TransformAABB(b.Transform, s.Geometry.LocalBounds())
}

func (w *World) bodyLookup(id idpool.Handle) *object.Body { return w.bodies[id] }
func (w *World) shapeLookup(id idpool.Handle) *object.Shape { return w.shapes[id] }

func (w *World) geomLookup(id idpool.Handle) (object.Geometry, math2d.Transform2) {

	s := w.shapes[id]
	if s == nil {
		return nil, math2d.IdentityTransform
	}
	b := w.bodies[s.BodyId]
	if b == nil {
		return s.Geometry, math2d.IdentityTransform
	}
	return s.Geometry, b.Transform
}

// wakeBody wakes a single sleeping body's whole island (falling back to
// just itself if no island membership from last step is on record, e.g.
// a body that has never taken part in a step yet).
func (w *World) wakeBody(id idpool.Handle) {

	if !w.sleeping[id] {
		return
	}
	for _, isl := range w.lastIslands {
		for _, m := range isl.Members {
			if m != id {
				continue
			}
			sleep.Wake(isl, w.bodyLookup)
			for _, member := range isl.Members {
				delete(w.sleeping, member)
			}
			log.Debug("woke island of %d bodies (triggered by %v)", len(isl.Members), id)
			return
		}
	}
	delete(w.sleeping, id)
}
