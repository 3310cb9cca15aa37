package main

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/trace"
)

// workload draws a random mix of allocations and releases.
type workload struct {
	rng     *rand.Rand
	maxSize int
	freePct int
}

func newWorkload(seed int64, maxSize, freePct int) (*workload, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max size must be positive, got %d", maxSize)
	}
	if freePct < 0 || freePct > 100 {
		return nil, fmt.Errorf("free percentage must be in [0,100], got %d", freePct)
	}
	return &workload{rng: rand.New(rand.NewSource(seed)), maxSize: maxSize, freePct: freePct}, nil
}

// step picks the next operation given the number of live allocations: either
// a release of live index idx or an allocation of size bytes.
func (w *workload) step(live int) (release bool, idx, size int) {
	if live > 0 && w.rng.Intn(100) < w.freePct {
		return true, w.rng.Intn(live), 0
	}
	return false, 0, 1 + w.rng.Intn(w.maxSize)
}

// generate runs n workload steps against a and returns them as trace ops.
// Allocations that run out of space stay in the trace so a replay sees the
// same failures.
func (w *workload) generate(a *alloc.Allocator, n int) ([]trace.Op, error) {
	ops := make([]trace.Op, 0, n)
	var live []string
	ptrs := make(map[string]alloc.Ptr)

	for i := range n {
		release, idx, size := w.step(len(live))
		if release {
			label := live[idx]
			if err := a.Release(ptrs[label]); err != nil {
				return nil, err
			}
			live = slices.Delete(live, idx, idx+1)
			delete(ptrs, label)
			ops = append(ops, trace.Free(label))
			continue
		}

		label := fmt.Sprintf("p%d", i)
		ops = append(ops, trace.Alloc(label, size))
		p, err := a.Allocate(size)
		switch {
		case errors.Is(err, alloc.ErrOutOfSpace):
			continue
		case err != nil:
			return nil, err
		}
		live = append(live, label)
		ptrs[label] = p
	}
	return ops, nil
}
