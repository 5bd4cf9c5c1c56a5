// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package joint implements the explicit-constraint lifecycle (spec §4.5,
// C5): a Joint is "as contact, but between exactly two bodies by user
// declaration" — no pair-set, no touching transition, always linked into
// both endpoint bodies' intrusive edge lists. JointSim discriminates by
// Type and carries the per-type parameter block the spec's §3 Joint
// description names (distance, motor, mouse, revolute, prismatic, weld,
// wheel).
//
// Grounded on experimental/physics/constraint/*.go (PointToPoint, Hinge,
// Lock, Distance, ConeTwist all share the same "embed a base Constraint,
// add per-type equations, dispatch Update() once per step" shape) and
// experimental/physics/constraint/constraint.go's Constraint (bodyA/
// bodyB/colConn), generalized from a slice-of-IEquation dispatch object
// into the spec's tagged-union JointSim so prepare/warm-start/solve can
// switch on Type once per pass instead of walking a polymorphic equation
// list.
package joint

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// Type discriminates a JointSim's parameter block (spec §3's Joint
// "type ∈ {distance, motor, mouse, revolute, prismatic, weld, wheel}").
type Type int

const (
	Distance Type = iota
	Motor
	Mouse
	Revolute
	Prismatic
	Weld
	Wheel
)

// Frame is a local position+rotation offset from a body's center-of-mass
// frame (spec §3's "frameA, frameB"), generalized from the teacher's
// separate pivot/axis vector pairs (PointToPoint.pivotA/B,
// Hinge.axisA/B) into one combined anchor+axis record every joint type
// shares, since every joint this package implements needs at most one
// anchor point and one axis.
type Frame struct {
	Anchor math2d.Vec2
	Axis    math2d.Vec2 // unit vector recorded with the anchor; Prepare does not read it (prismatic/wheel take their axis from the anchors)
}

// Joint is the persistent per-pair record (spec §4.5): survives across
// steps for as long as the user keeps it alive, linking into each body's
// intrusive edge list via NextEdgeA/NextEdgeB the way physics/contact's
// Contact does (spec §9's Design Notes convention, simplified here from
// the literal (entityId<<1)|side key encoding to direct handle chaining,
// matching the simplification physics/contact.Contact already made).
type Joint struct {
	Id idpool.Handle

	Type Type

	BodyIdA, BodyIdB idpool.Handle
	FrameA, FrameB   Frame

	CollideConnected bool // spec's colConn: if true, the two bodies still generate contacts

	// Per-type tuning. Only the fields relevant to Type are meaningful;
	// the rest are zero. This mirrors spec §3's "carries per-type
	// parameters (spring hertz/damping, limits, motor speed/force)".
	LinearHertz, LinearDampingRatio   float64
	AngularHertz, AngularDampingRatio float64

	EnableLimit          bool
	LowerLimit, UpperLimit float64

	EnableMotor     bool
	MotorSpeed      float64
	MaxMotorForce   float64 // force for prismatic/distance/wheel; torque for revolute/wheel angular motor

	Length float64 // distance joint's rest length

	NextEdgeA, NextEdgeB idpool.Handle
}

// JointSim is the per-step prepared solver state for one Joint (spec
// §4.9's "prepare" phase output): the anchors/axis rotated to world
// space plus the type-specific equations built from them, mirroring
// physics/contact.ContactSim's "persistent record -> per-step sim
// record" split.
type JointSim struct {
	JointId          idpool.Handle
	Type             Type
	BodyIdA, BodyIdB idpool.Handle

	InvMassA, InvMassB       float64
	InvInertiaA, InvInertiaB float64

	CenterDiff0 math2d.Vec2 // cB - cA at prepare time, for incremental position drift (spec §4.9)

	Point  *equation.PointConstraint  // revolute/weld/mouse pivot coincidence
	Angle  *equation.AngleConstraint  // weld's and prismatic/wheel's angular lock; revolute's relative-angle row
	Motor  *equation.MotorConstraint  // revolute/wheel angular motor; prismatic/wheel linear motor (reinterpreted: Mass is linear)
	Lower  *equation.LimitConstraint
	Upper  *equation.LimitConstraint
	Axial  *equation.LimitConstraint // bilateral row along the anchor-to-anchor axis: distance's rest length, prismatic/wheel's zero offset
}

// NewJoint returns a Joint with sane non-limiting/non-motoring defaults,
// analogous to Constraint.initialize's defaults (nothing enabled until
// the caller opts in), except that CollideConnected starts false.
func NewJoint(id idpool.Handle, t Type, bodyA, bodyB idpool.Handle, frameA, frameB Frame) *Joint {

	return &Joint{
		Id:               id,
		Type:             t,
		BodyIdA:          bodyA,
		BodyIdB:          bodyB,
		FrameA:           frameA,
		FrameB:           frameB,
		CollideConnected: false,
		LinearHertz:      equation.JointHertz,
		LinearDampingRatio: equation.JointDampingRatio,
		AngularHertz:     equation.JointHertz,
		AngularDampingRatio: equation.JointDampingRatio,
	}
}
