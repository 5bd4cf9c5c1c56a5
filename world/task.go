// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package world

import "sync"

// TaskRunner realizes spec §5's "Scheduling model": a parallel worker
// pool supplied by the host that the world step divides independent
// work across within one pipeline stage, with a barrier between stages
// (spec §5 "Stages are sequenced by a barrier; there is no cross-stage
// concurrency").
//
// Grounded on akmonengine-feather's `task(workers, items, fn)` helper
// (split a slice into `workers` chunks, run a closure per chunk, wait)
// — the same shape Run below follows, generalized from that package's
// fixed collision-pass call site into a reusable type any stage can use.
type TaskRunner struct {
	workers int
}

// NewTaskRunner returns a runner with workerCount workers clamped to at
// least feather's DEFAULT_WORKERS (1), so a WorldDef that never mentions
// workerCount still runs (serially, inline).
func NewTaskRunner(workerCount int) TaskRunner {

	if workerCount < 1 {
		workerCount = 1
	}
	return TaskRunner{workers: workerCount}
}

// Run splits items into at most r.workers chunks and calls fn once per
// chunk with the chunk's [start,end) index range, waiting for every
// chunk to finish before returning (spec §5's synchronous barrier — "the
// core awaits task completion synchronously before the next stage").
// With workers == 1 (the default) it runs fn inline with no goroutines,
// matching feather's DEFAULT_WORKERS=1 fallback.
func (r TaskRunner) Run(itemCount int, fn func(start, end int)) {

	if itemCount == 0 {
		return
	}
	if r.workers <= 1 {
		fn(0, itemCount)
		return
	}

	chunk := (itemCount + r.workers - 1) / r.workers
	var wg sync.WaitGroup
	for start := 0; start < itemCount; start += chunk {
		end := start + chunk
		if end > itemCount {
			end = itemCount
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
