// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"github.com/gophysics/kinetic2d/math2d"
	"github.com/gophysics/kinetic2d/physics/equation"
)

// WarmStartContact applies a contact's persisted impulses to the two
// bodies' velocities before the first relaxation iteration (spec §4.9
// "Warm-start. Apply the persisted impulses from the previous step to
// body velocities. A contact applies impulse = normalImpulse*n +
// tangentImpulse*t at each point plus any rolling impulse"), the
// contact-specific instance of the same idea gs.go's GaussSeidel applies
// implicitly by carrying solveLambda across iterations (there, within
// one solve; here, across whole steps).
func WarmStartContact(cc *equation.ContactConstraint, bodyA, bodyB *BodyState) {

	tangent := math2d.Perp2(cc.Normal)

	for _, p := range cc.Points {
		impulse := math2d.Add2(
			math2d.Scale2(cc.Normal, p.NormalImpulse),
			math2d.Scale2(tangent, p.TangentImpulse),
		)
		applyImpulse(bodyA, bodyB, p.AnchorA, p.AnchorB, impulse)
	}
	if cc.RollingImpulse != 0 {
		applyAngularImpulse(bodyA, bodyB, cc.RollingImpulse)
	}
}

// SolveContact runs one relaxation iteration over every point of a
// manifold (spec §4.9's "Contact normal"/"Contact tangent (friction)"
// constraint blocks), mirroring gs.go's per-equation "compute GWlambda,
// derive deltaLambda, clamp the accumulator, apply the delta" loop body
// but with the bias/massScale/impulseScale triple a soft constraint
// needs instead of gs.go's flat eps/a/b SPOOK terms.
func SolveContact(cc *equation.ContactConstraint, bodyA, bodyB *BodyState, invH float64, useBias bool) {

	tangent := math2d.Perp2(cc.Normal)

	for i := range cc.Points {
		p := &cc.Points[i]

		rA, rB := p.AnchorA, p.AnchorB
		dv := relativeVelocity(bodyA, bodyB, rA, rB)

		vn := math2d.Dot(dv, cc.Normal)

		// The separation drifts with whatever the bodies' centers have
		// moved by so far this step (deltaPosition); anchors are kept
		// fixed relative to each body rather than re-rotated by
		// deltaRotation each iteration, a deliberate simplification of
		// spec §4.9's "pseudo-positions" bookkeeping documented in
		// DESIGN.md.
		drift := math2d.Dot(math2d.Sub2(bodyB.DeltaPosition, bodyA.DeltaPosition), cc.Normal)
		separation := p.BaseSeparation + drift

		bias, massScale, impulseScale := separationBias(separation, invH, cc.Softness, useBias)

		impulse := -p.NormalMass*massScale*(vn+bias) - impulseScale*p.NormalImpulse
		newImpulse := p.NormalImpulse + impulse
		if newImpulse < 0 {
			newImpulse = 0
		}
		impulse = newImpulse - p.NormalImpulse
		p.NormalImpulse = newImpulse
		if newImpulse > p.MaxNormalImpulse {
			p.MaxNormalImpulse = newImpulse
		}

		applyImpulse(bodyA, bodyB, rA, rB, math2d.Scale2(cc.Normal, impulse))
	}

	var totalNormalImpulse float64
	for i := range cc.Points {
		totalNormalImpulse += cc.Points[i].NormalImpulse
	}

	for i := range cc.Points {
		p := &cc.Points[i]
		rA, rB := p.AnchorA, p.AnchorB

		dv := relativeVelocity(bodyA, bodyB, rA, rB)
		vt := math2d.Dot(dv, tangent) - cc.TangentSpeed

		impulse := -p.TangentMass * vt
		maxFriction := cc.Friction * p.NormalImpulse
		newImpulse := clamp(p.TangentImpulse+impulse, -maxFriction, maxFriction)
		impulse = newImpulse - p.TangentImpulse
		p.TangentImpulse = newImpulse

		applyImpulse(bodyA, bodyB, rA, rB, math2d.Scale2(tangent, impulse))
	}

	if cc.RollingResistance > 0 && totalNormalImpulse > 0 {
		relativeSpin := bodyB.AngularVelocity - bodyA.AngularVelocity
		maxRolling := cc.RollingResistance * totalNormalImpulse
		impulse := clamp(cc.RollingImpulse-relativeSpin, -maxRolling, maxRolling) - cc.RollingImpulse
		cc.RollingImpulse += impulse
		applyAngularImpulse(bodyA, bodyB, impulse)
	}
}

// ApplyRestitution runs the bounce pass spec §4.9 describes ("on the
// first velocity iteration of the first substep after a contact begins,
// if |Cdot_n| at the time of collision exceeded the world
// restitutionThreshold, add a bias -restitution*(pre-step normal
// velocity)"). Call once, after the useBias=true iteration of the first
// substep, for every touching contact whose RelativeVelocity was
// recorded at begin-touch.
func ApplyRestitution(cc *equation.ContactConstraint, bodyA, bodyB *BodyState, restitutionThreshold float64) {

	if cc.Restitution == 0 {
		return
	}

	for i := range cc.Points {
		p := &cc.Points[i]
		if p.RelativeVelocity > -restitutionThreshold || p.MaxNormalImpulse == 0 {
			continue
		}

		rA, rB := p.AnchorA, p.AnchorB
		dv := relativeVelocity(bodyA, bodyB, rA, rB)
		vn := math2d.Dot(dv, cc.Normal)

		impulse := -p.NormalMass * (vn + cc.Restitution*p.RelativeVelocity)
		newImpulse := p.NormalImpulse + impulse
		if newImpulse < 0 {
			newImpulse = 0
		}
		impulse = newImpulse - p.NormalImpulse
		p.NormalImpulse = newImpulse
		if newImpulse > p.MaxNormalImpulse {
			p.MaxNormalImpulse = newImpulse
		}

		applyImpulse(bodyA, bodyB, rA, rB, math2d.Scale2(cc.Normal, impulse))
	}
}
