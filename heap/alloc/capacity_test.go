package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/chunk"
)

func TestAllocate_AllocatedRegistryFull(t *testing.T) {
	a := newTestAllocator(t, 100, 2)
	mustAllocate(t, a, 10)
	mustAllocate(t, a, 10)
	allocated, free := a.Allocated(), a.Free()

	p, err := a.Allocate(10)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.True(t, IsFatal(err))
	assert.Equal(t, Nil, p)
	assert.Equal(t, allocated, a.Allocated())
	assert.Equal(t, free, a.Free())
}

// TestRelease_FullFreeRegistryMerges fills the free registry and releases a
// chunk bordered by free space on both sides. The merge frees a slot, so the
// release succeeds.
func TestRelease_FullFreeRegistryMerges(t *testing.T) {
	a := newTestAllocator(t, 100, 2)
	p0 := mustAllocate(t, a, 10)
	p1 := mustAllocate(t, a, 10)
	require.NoError(t, a.Release(p0))
	require.Equal(t, 2, len(a.Free()), "free registry should be full")

	require.NoError(t, a.Release(p1))
	assert.Equal(t, []chunk.Chunk{{Start: 0, Size: 100}}, a.Free())
	assert.Empty(t, a.Allocated())
}

// TestRelease_FullFreeRegistryIsolated builds a state in which the chunk being
// released has no free neighbour while the free registry is full. Equal
// registry capacities never reach this through the public API, so the
// registries are swapped for smaller ones.
func TestRelease_FullFreeRegistryIsolated(t *testing.T) {
	a := newTestAllocator(t, 100, 8)
	p0 := mustAllocate(t, a, 10)
	p1 := mustAllocate(t, a, 10)
	mustAllocate(t, a, 10)
	p3 := mustAllocate(t, a, 10)
	require.NoError(t, a.Release(p0))

	// free: [0,10) [40,60); allocated: [10,10) [20,10) [30,10)
	free := chunk.NewRegistry(2)
	for _, c := range a.Free() {
		require.NoError(t, free.Insert(c))
	}
	a.free = free
	require.True(t, a.free.Full())

	allocated, before := a.Allocated(), a.Free()
	err := a.Release(Ptr(20))
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, allocated, a.Allocated(), "rejected release must not change allocated")
	assert.Equal(t, before, a.Free(), "rejected release must not change free")

	// Neighbours of free space still fold in.
	require.NoError(t, a.Release(p1))
	require.NoError(t, a.Release(p3))
	assert.Equal(t, []chunk.Chunk{{Start: 0, Size: 20}, {Start: 30, Size: 70}}, a.Free())
}

func TestFreeNeighbors(t *testing.T) {
	a := newTestAllocator(t, 100, 0)
	a.free.Reset()
	require.NoError(t, a.free.Insert(chunk.Chunk{Start: 0, Size: 10}))
	require.NoError(t, a.free.Insert(chunk.Chunk{Start: 30, Size: 10}))
	require.NoError(t, a.free.Insert(chunk.Chunk{Start: 60, Size: 10}))

	tests := []struct {
		c           chunk.Chunk
		left, right int
	}{
		{chunk.Chunk{Start: 10, Size: 20}, 0, 1},
		{chunk.Chunk{Start: 10, Size: 5}, 0, -1},
		{chunk.Chunk{Start: 50, Size: 10}, -1, 2},
		{chunk.Chunk{Start: 45, Size: 5}, -1, -1},
		{chunk.Chunk{Start: 70, Size: 30}, 2, -1},
	}
	for _, tt := range tests {
		left, right := a.freeNeighbors(tt.c)
		assert.Equal(t, tt.left, left, "left of %s", tt.c)
		assert.Equal(t, tt.right, right, "right of %s", tt.c)
	}
}
