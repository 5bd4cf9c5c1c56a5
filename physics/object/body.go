// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package object holds the Body and Shape data-model records (spec §3).
// It is deliberately free of solver/collision logic: Body carries the
// kinematic and mass-property state a body needs, plus the intrusive
// edge-list heads the rest of the core links contacts, shapes and joints
// into, generalized from the teacher's physics.Body (which embedded a
// *graphic.Graphic scene node) into a headless record addressed by
// (setIndex, localIndex) as spec §3's SolverSet describes.
package object

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// BodyType specifies how a body is affected during simulation (spec §3).
type BodyType int

const (
	// Static bodies never move and have infinite mass.
	Static BodyType = iota
	// Kinematic bodies move according to their set velocity but are
	// unaffected by forces or collisions.
	Kinematic
	// Dynamic bodies are fully simulated.
	Dynamic
)

func (t BodyType) String() string {

	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// MotionLocks zero out velocity components along the locked axes every
// substep (spec §4.9 "Respect motion locks").
type MotionLocks struct {
	X, Y, AngularZ bool
}

// Body is the kinematic and mass-property record for one rigid body
// (spec §3 "Body"). Id is the stable generational handle; SetIndex and
// LocalIndex locate the body's BodySim/BodyState record inside whichever
// SolverSet currently holds it (the static set, the disabled set, the
// awake set, or a sleeping island's set) — moving a body between sets
// must update this pair, which is the per-entity invariant spec §4.2
// calls out.
type Body struct {
	Id idpool.Handle

	SetIndex   int32
	LocalIndex int32

	Type BodyType

	Transform math2d.Transform2 // body origin, not center of mass
	LocalCenter math2d.Vec2     // center of mass, body-local

	LinearVelocity  math2d.Vec2
	AngularVelocity float64

	Mass        float64
	InvMass     float64
	Inertia     float64 // about the center of mass
	InvInertia  float64

	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64

	IsBullet           bool
	AllowFastRotation  bool
	EnableSleep        bool
	Locks              MotionLocks

	SleepTime float64

	// Intrusive edge-list heads; keys are encoded (entityId<<1)|side as
	// spec §9 "Design Notes" prescribes, 0 meaning "no edge".
	HeadContactKey uint64
	HeadShapeId    idpool.Handle
	HeadJointKey   uint64

	IslandId idpool.Handle

	UserData interface{}
}

// NewBody returns a Body with the teacher's body.go defaults (unit mass
// until shapes are attached, sleep enabled) generalized to the spec's
// field set. Linear and angular damping are left at zero.
func NewBody(id idpool.Handle, bodyType BodyType) *Body {

	b := &Body{
		Id:             id,
		Type:           bodyType,
		Transform:      math2d.IdentityTransform,
		GravityScale:   1,
		EnableSleep:    true,
		AllowFastRotation: false,
	}
	if bodyType == Dynamic {
		b.Mass = 1
		b.InvMass = 1
	}
	return b
}

// WorldCenter returns the body's center of mass in world space.
func (b *Body) WorldCenter() math2d.Vec2 {

	return math2d.TransformPoint(b.Transform, b.LocalCenter)
}

// VelocityAtLocalPoint returns the linear velocity of the material point
// rp (a world-space offset from the center of mass) given the body's
// current linear and angular velocity: v + omega x r.
func (b *Body) VelocityAtLocalPoint(rp math2d.Vec2) math2d.Vec2 {

	return math2d.Add2(b.LinearVelocity, math2d.CrossScalar(b.AngularVelocity, rp))
}

// ApplyMotionLocks zeroes the locked velocity components in place, used
// once per substep prepare (spec §4.9).
func (b *Body) ApplyMotionLocks() {

	if b.Locks.X {
		b.LinearVelocity.X = 0
	}
	if b.Locks.Y {
		b.LinearVelocity.Y = 0
	}
	if b.Locks.AngularZ {
		b.AngularVelocity = 0
	}
}

// KineticEnergy returns 0.5*m*v^2 + 0.5*I*w^2. The sleep manager (C11)
// does not use it; it thresholds linear and angular speed instead.
func (b *Body) KineticEnergy() float64 {

	return 0.5*b.Mass*b.LinearVelocity.LengthSq() + 0.5*b.Inertia*b.AngularVelocity*b.AngularVelocity
}
