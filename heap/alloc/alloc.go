package alloc

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/chunk"
	"github.com/joshuapare/heapkit/internal/region"
)

// Ptr is the offset of an allocation within the arena.
type Ptr int

// Nil is the empty pointer result. Offset 0 is a valid allocation.
const Nil Ptr = -1

// Allocator is a best-fit allocator over one fixed-size arena.
//
// The allocated and free registries are only ever changed together by
// Allocate and Release. A byte offset is never the start of a chunk in both.
type Allocator struct {
	arena []byte
	unmap func() error

	allocated *chunk.Registry
	free      *chunk.Registry

	log    *slog.Logger
	stats  Stats
	closed bool
}

// New maps an arena of cfg.ArenaSize bytes and returns an allocator whose
// free registry holds the single chunk [0, cfg.ArenaSize).
func New(cfg Config, opts ...Option) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, unmap, err := region.Map(cfg.ArenaSize)
	if err != nil {
		return nil, err
	}

	a := &Allocator{
		arena:     data,
		unmap:     unmap,
		allocated: chunk.NewRegistry(cfg.RegistryCapacity),
		free:      chunk.NewRegistry(cfg.RegistryCapacity),
		log:       defaultLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.free.Insert(chunk.Chunk{Start: 0, Size: cfg.ArenaSize}); err != nil {
		_ = unmap()
		return nil, err
	}
	return a, nil
}

// Allocate reserves size bytes and returns their offset.
//
// A zero size returns Nil without touching the registries. When no free chunk
// is large enough Allocate returns Nil and an error wrapping ErrOutOfSpace;
// the registries are unchanged and the caller may retry later.
func (a *Allocator) Allocate(size int) (Ptr, error) {
	if a.closed {
		return Nil, ErrClosed
	}
	a.stats.AllocCalls++

	switch {
	case size == 0:
		return Nil, nil
	case size < 0:
		return Nil, a.fatal("allocate", fmt.Errorf("%w: %d", ErrInvalidSize, size))
	}

	idx, leftover := a.bestFit(size)
	if idx < 0 {
		a.stats.FailedAllocs++
		largest := a.largestFree()
		if a.debug() {
			a.log.Debug("allocate: out of space",
				"size", size,
				"free_bytes", a.free.TotalSize(),
				"largest_free", largest,
			)
		}
		return Nil, fmt.Errorf("%w: need %d, largest free %d", ErrOutOfSpace, size, largest)
	}
	if a.allocated.Full() {
		return Nil, a.fatal("allocate",
			fmt.Errorf("%w: allocated registry holds %d chunks", ErrCapacityExceeded, a.allocated.Len()))
	}

	c, err := a.free.Remove(idx)
	if err != nil {
		return Nil, a.fatal("allocate", err)
	}
	used := chunk.Chunk{Start: c.Start, Size: size}
	if err := a.allocated.Insert(used); err != nil {
		// Restore the free chunk so the registries stay consistent.
		_ = a.free.Insert(c)
		return Nil, a.fatal("allocate", err)
	}

	if leftover > 0 {
		// The slot vacated by c guarantees room for the remainder.
		rest := chunk.Chunk{Start: used.End(), Size: leftover}
		if err := a.free.Insert(rest); err != nil {
			return Nil, a.fatal("allocate", err)
		}
		a.stats.SplitCount++
		if a.debug() {
			a.log.Debug("allocate: split", "chunk", c.String(), "size", size, "remainder", leftover)
		}
	}
	a.coalesceFree()

	a.stats.BytesInUse += size
	a.stats.PeakBytesInUse = max(a.stats.PeakBytesInUse, a.stats.BytesInUse)
	return Ptr(used.Start), nil
}

// Release returns the allocation at p to the free registry and merges it
// with any physically adjacent free chunks.
//
// Releasing Nil is a no-op. Releasing an offset that is not the start of a
// current allocation, including a second release of the same pointer, returns
// an error wrapping ErrInvalidRelease.
func (a *Allocator) Release(p Ptr) error {
	if a.closed {
		return ErrClosed
	}
	a.stats.ReleaseCalls++

	if p == Nil {
		return nil
	}

	idx, ok := a.allocated.Find(int(p))
	if !ok {
		return a.fatal("release", fmt.Errorf("%w: offset %d", ErrInvalidRelease, p))
	}
	c, err := a.allocated.At(idx)
	if err != nil {
		return a.fatal("release", err)
	}
	if c.Start != int(p) {
		return a.fatal("release", fmt.Errorf("%w: offset %d resolved to %s", ErrInvalidRelease, p, c))
	}

	// A full free registry can only take c if c absorbs a neighbour first.
	left, right := -1, -1
	if a.free.Full() {
		left, right = a.freeNeighbors(c)
		if left < 0 && right < 0 {
			return a.fatal("release",
				fmt.Errorf("%w: free registry holds %d chunks", ErrCapacityExceeded, a.free.Len()))
		}
	}

	if _, err := a.allocated.Remove(idx); err != nil {
		return a.fatal("release", err)
	}
	a.stats.BytesInUse -= c.Size

	merged := c
	// right > left, so removing right first keeps left valid.
	if right >= 0 {
		n, _ := a.free.Remove(right)
		merged.Size += n.Size
		a.stats.CoalesceMerges++
	}
	if left >= 0 {
		n, _ := a.free.Remove(left)
		merged = chunk.Chunk{Start: n.Start, Size: n.Size + merged.Size}
		a.stats.CoalesceMerges++
	}
	if err := a.free.Insert(merged); err != nil {
		return a.fatal("release", err)
	}
	a.coalesceFree()
	return nil
}

// Bytes returns the arena bytes of the allocation at p. The slice is only
// valid until p is released or the allocator is closed.
func (a *Allocator) Bytes(p Ptr) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	idx, ok := a.allocated.Find(int(p))
	if !ok {
		return nil, fmt.Errorf("%w: offset %d", ErrBadPtr, p)
	}
	c, err := a.allocated.At(idx)
	if err != nil {
		return nil, err
	}
	return a.arena[c.Start:c.End():c.End()], nil
}

// ArenaSize returns the fixed arena size in bytes.
func (a *Allocator) ArenaSize() int { return len(a.arena) }

// Allocated returns a copy of the allocated registry in ascending order.
func (a *Allocator) Allocated() []chunk.Chunk { return a.allocated.Chunks() }

// Free returns a copy of the free registry in ascending order.
func (a *Allocator) Free() []chunk.Chunk { return a.free.Chunks() }

// Snapshot returns the arena size and copies of both registries.
func (a *Allocator) Snapshot() (arenaSize int, allocated, free []chunk.Chunk) {
	return len(a.arena), a.allocated.Chunks(), a.free.Chunks()
}

// DumpAllocated writes the allocated registry to w.
func (a *Allocator) DumpAllocated(w io.Writer) error { return a.allocated.Dump(w, "Allocated") }

// DumpFree writes the free registry to w.
func (a *Allocator) DumpFree(w io.Writer) error { return a.free.Dump(w, "Free") }

// Dump writes both registries to w, allocated first.
func (a *Allocator) Dump(w io.Writer) error {
	if err := a.DumpAllocated(w); err != nil {
		return err
	}
	return a.DumpFree(w)
}

// Stats returns allocator counters and a summary of the current layout.
func (a *Allocator) Stats() Stats {
	s := a.stats
	s.ArenaSize = len(a.arena)
	s.AllocatedChunks = a.allocated.Len()
	s.FreeChunks = a.free.Len()
	s.FreeBytes = a.free.TotalSize()
	s.LargestFree = a.largestFree()
	return s
}

// Close unmaps the arena. Further calls return ErrClosed.
func (a *Allocator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.arena = nil
	a.allocated.Reset()
	a.free.Reset()
	return a.unmap()
}

// bestFit returns the index of the free chunk leaving the smallest leftover
// for size, and that leftover. Ties keep the lowest address. It returns -1
// when nothing fits.
func (a *Allocator) bestFit(size int) (int, int) {
	best, bestLeft := -1, 0
	for i, c := range a.free.All() {
		if c.Size < size {
			continue
		}
		left := c.Size - size
		if best < 0 || left < bestLeft {
			best, bestLeft = i, left
			if left == 0 {
				break
			}
		}
	}
	return best, bestLeft
}

// freeNeighbors returns the indexes of the free chunks ending at c.Start and
// starting at c.End(), or -1 for each that does not exist.
func (a *Allocator) freeNeighbors(c chunk.Chunk) (left, right int) {
	left, right = -1, -1
	for i, f := range a.free.All() {
		if f.Start > c.End() {
			break
		}
		if f.End() == c.Start {
			left = i
		}
		if f.Start == c.End() {
			right = i
			break
		}
	}
	return left, right
}

func (a *Allocator) largestFree() int {
	largest := 0
	for _, c := range a.free.All() {
		largest = max(largest, c.Size)
	}
	return largest
}

func (a *Allocator) coalesceFree() {
	merges := a.free.Coalesce()
	if merges == 0 {
		return
	}
	a.stats.CoalesceMerges += merges
	if a.debug() {
		a.log.Debug("coalesce", "merges", merges, "free_chunks", a.free.Len())
	}
}

func (a *Allocator) fatal(op string, err error) error {
	a.log.Warn(op+" failed", "error", err)
	return err
}

func (a *Allocator) debug() bool {
	return a.log.Enabled(context.Background(), slog.LevelDebug)
}
