// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equation implements the prepared constraint state the substep
// solver (C9) iterates: contact normal/tangent/rolling constraints (see
// contact.go) and joint point-to-point/angular/motor/limit constraints
// (see joint.go), plus the Softness derivation both share (softness.go).
//
// Generalized from the teacher's physics/equation/equation.go, whose
// Equation/Contact pair bundled a SPOOK a/b/eps triple with a min/max
// force clamp and a 3D Jacobian-element abstraction. This package keeps
// that same "clamp a scalar impulse between a min and max, soften with a
// few precomputed coefficients" shape but drops the explicit Jacobian
// object: a 2D engine's Jacobian rows are exactly (normal, r x normal)
// pairs, cheap enough to inline at each constraint's prepare/solve call
// site instead of building a reusable abstraction for them.
package equation

// ForceLimit is the [min,max] scalar-impulse clamp every equation in
// this package applies each solver iteration (spec §4.9's "clamp the
// accumulated impulse"), generalized from the teacher's
// Equation.minForce/maxForce pair.
type ForceLimit struct {
	Min, Max float64
}

// Clamp returns v bounded to [l.Min, l.Max].
func (l ForceLimit) Clamp(v float64) float64 {

	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// UnboundedForce never clamps (used by equality constraints like a
// joint's point-to-point axis, which can push or pull with any
// magnitude needed).
var UnboundedForce = ForceLimit{Min: -1e38, Max: 1e38}

// NonNegativeForce only allows a pushing (non-negative) impulse, the
// clamp every contact normal constraint uses (spec §4.9: contacts never
// pull bodies together).
var NonNegativeForce = ForceLimit{Min: 0, Max: 1e38}
