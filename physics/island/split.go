// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package island

import (
	"sort"

	"github.com/gophysics/kinetic2d/physics/idpool"
)

// Split re-partitions one island's members by flood-filling the edges
// that still exist after a contact stopped touching or a joint was
// removed (spec §4.6 "Split": a union-find forest only ever merges, so a
// removed edge needs an explicit flood-fill to discover whether the
// island actually broke in two). Grounded on cp's FloodFillComponent
// (undefinedopcode-cp/space.go): BFS outward from one seed per
// as-yet-unvisited member, following only edges still present, same as
// cp's "ComponentActive" walk over arbiters/constraints.
//
// Splitting is lazy: callers should only invoke this for islands that
// actually lost an edge this step (spec §4.6's "Design Notes" on the
// flood-fill split threshold), not for every island on every step — this
// function itself is unconditional, the laziness is the caller's job.
func Split(members []idpool.Handle, remainingEdges []Edge) []Island {

	adjacency := make(map[idpool.Handle][]idpool.Handle, len(members))
	for _, m := range members {
		adjacency[m] = nil
	}
	for _, e := range remainingEdges {
		adjacency[e.BodyA] = append(adjacency[e.BodyA], e.BodyB)
		adjacency[e.BodyB] = append(adjacency[e.BodyB], e.BodyA)
	}

	visited := make(map[idpool.Handle]bool, len(members))
	var islands []Island

	for _, seed := range members {
		if visited[seed] {
			continue
		}
		var component []idpool.Handle
		queue := []idpool.Handle{seed}
		visited[seed] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, next := range adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Slice(component, func(i, j int) bool { return component[i].Index1 < component[j].Index1 })
		islands = append(islands, Island{Root: component[0], Members: component})
	}

	sort.Slice(islands, func(i, j int) bool { return islands[i].Root.Index1 < islands[j].Root.Index1 })
	return islands
}
