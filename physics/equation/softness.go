// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equation derives the soft-constraint (biasRate, massScale,
// impulseScale) triple spec §4.9 "Substep Solver" prepares from a
// Hertz/damping-ratio pair, and builds the per-manifold-point
// normal/tangent/rolling equations and the joint point-to-point/angular/
// motor/limit equations the solver (C9) iterates over.
//
// Grounded on physics/equation/equation.go's SetSpookParams (the
// teacher's SPOOK a/b/eps triple derived from stiffness+relaxation+h),
// re-derived here in the Hertz/dampingRatio parameterization spec §4.9
// names instead of stiffness/relaxation, following the same "solve for
// the three solver coefficients from two physical tuning knobs and the
// timestep" shape.
package equation

import "math"

// Softness is the (biasRate, massScale, impulseScale) triple the substep
// solver's bias-and-scale impulse update uses (spec §4.9). A zero
// Softness (all fields zero except massScale=1) is a perfectly rigid
// constraint.
type Softness struct {
	BiasRate     float64
	MassScale    float64
	ImpulseScale float64
}

// RigidSoftness is the non-soft default: full mass scale, no bias, no
// impulse decay.
var RigidSoftness = Softness{MassScale: 1}

// MakeSoft derives a Softness from hertz (the constraint's natural
// frequency — 0 means rigid), dampingRatio and the substep time h,
// mirroring SetSpookParams' "turn two physical constants plus h into the
// three solver coefficients" shape but in the Hertz/zeta parameterization
// (omega = 2*pi*hertz) the spec's substep solver names.
func MakeSoft(hertz, dampingRatio, h float64) Softness {

	if hertz <= 0 {
		return RigidSoftness
	}

	omega := 2 * math.Pi * hertz
	a1 := 2*dampingRatio + h*omega
	a2 := h * omega * a1
	a3 := 1 / (1 + a2)

	return Softness{
		BiasRate:     omega / a1,
		MassScale:    a2 * a3,
		ImpulseScale: a3,
	}
}

// ContactHertz and ContactDampingRatio are the default tuning spec §4.9
// and §6 assume for contact constraints absent an explicit WorldDef
// override (matched to the 30Hz/10 damping-ratio convention every
// TGS-soft-constraint 2D engine in this generation ships as its default).
const (
	ContactHertz        = 30.0
	ContactDampingRatio = 10.0
	JointHertz          = 60.0
	JointDampingRatio   = 2.0
)
