// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graph implements the constraint graph's greedy edge-coloring
// (spec §4.7): every touching contact and enabled joint is an edge
// between the two bodies it constrains, and constraints sharing a color
// can be solved in parallel because no two same-colored constraints ever
// touch the same body. Colors are bounded to K; anything that would need
// color K+1 goes into a single overflow color solved sequentially (spec
// §4.7 "Overflow").
//
// Grounded on the teacher's experimental/collision/matrix.go — a
// triangular bool matrix keyed by body-pair index — generalized from
// "is this pair colliding" (one bit) into "which color, if any, is this
// body currently using" (a per-color bitset), the natural extension of
// the same triangular-matrix idea to graph coloring.
package graph

import (
	"github.com/gophysics/kinetic2d/physics/idpool"
)

// MaxColors is K, the number of parallel-solvable colors before overflow
// (spec §4.7).
const MaxColors = 12

// OverflowColor is the index used for constraints that could not fit in
// any of the first MaxColors colors.
const OverflowColor = MaxColors

// Constraint is one edge to color: a contact or a joint, referenced by
// an opaque Id the caller defines (spec §9's encoded edge-key scheme —
// (entityId<<1)|kind — is a natural fit, but Color itself stays agnostic
// of that encoding).
type Constraint struct {
	Id           uint64
	BodyA, BodyB idpool.Handle
}

// bitset tracks, per color, which bodies are already used by a
// constraint of that color — the thing a same-colored pair must never
// share.
type bitset map[idpool.Handle]bool

// Coloring is the result of Color: constraints bucketed by color index,
// with OverflowColor as the last bucket.
type Coloring struct {
	Colors [][]Constraint // Colors[0..MaxColors-1]
	Overflow []Constraint
}

// Color greedily assigns each constraint the lowest-numbered color whose
// bitset doesn't already contain either endpoint body, matching g3n's
// Matrix.Set/.Get O(1) triangular lookup generalized to a per-color
// lookup instead of a single global one. Static bodies (identified by
// staticBody returning true) never occupy a color slot — a static body
// can anchor arbitrarily many same-colored constraints since it never
// moves during that color's parallel solve, the standard "ground never
// conflicts" rule every substepped solver with a parallel color pass
// uses (spec §4.7 "a static body endpoint never blocks a color").
func Color(constraints []Constraint, isStatic func(idpool.Handle) bool) Coloring {

	used := make([]bitset, MaxColors)
	for i := range used {
		used[i] = make(bitset)
	}

	var result Coloring
	result.Colors = make([][]Constraint, MaxColors)

	for _, c := range constraints {
		staticA := isStatic(c.BodyA)
		staticB := isStatic(c.BodyB)

		placed := false
		for color := 0; color < MaxColors; color++ {
			blockedA := !staticA && used[color][c.BodyA]
			blockedB := !staticB && used[color][c.BodyB]
			if blockedA || blockedB {
				continue
			}
			if !staticA {
				used[color][c.BodyA] = true
			}
			if !staticB {
				used[color][c.BodyB] = true
			}
			result.Colors[color] = append(result.Colors[color], c)
			placed = true
			break
		}
		if !placed {
			result.Overflow = append(result.Overflow, c)
		}
	}

	return result
}

// NonEmptyColors returns the indices of colors that received at least
// one constraint, in ascending order, the iteration order the solver
// (C9) processes colors in.
func (c Coloring) NonEmptyColors() []int {

	var out []int
	for i, bucket := range c.Colors {
		if len(bucket) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// Len returns the total number of constraints across every color and
// the overflow bucket.
func (c Coloring) Len() int {

	n := len(c.Overflow)
	for _, bucket := range c.Colors {
		n += len(bucket)
	}
	return n
}
