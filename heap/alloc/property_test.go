package alloc

import (
	"bytes"
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/chunk"
	"github.com/joshuapare/heapkit/heap/verify"
)

// model is the reference state for the random workload: live pointers, their
// sizes and the fill byte written into each allocation.
type model struct {
	sizes map[Ptr]int
	fill  map[Ptr]byte
}

func (m *model) live() []Ptr {
	out := make([]Ptr, 0, len(m.sizes))
	for p := range m.sizes {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// TestRandomWorkload_Invariants drives a seeded mix of allocations and
// releases and checks the layout invariants after every step. Each allocation
// is filled with its own byte so overlapping reuse would corrupt a neighbour.
func TestRandomWorkload_Invariants(t *testing.T) {
	for _, seed := range []int64{1, 42, 1337} {
		rng := rand.New(rand.NewSource(seed))
		a := newTestAllocator(t, 4096, 0)
		m := &model{sizes: map[Ptr]int{}, fill: map[Ptr]byte{}}

		for step := range 3000 {
			live := m.live()
			if len(live) > 0 && rng.Intn(100) < 45 {
				p := live[rng.Intn(len(live))]
				require.NoError(t, a.Release(p), "seed %d step %d", seed, step)
				delete(m.sizes, p)
				delete(m.fill, p)
			} else {
				size := 1 + rng.Intn(200)
				p, err := a.Allocate(size)
				if errors.Is(err, ErrOutOfSpace) {
					require.Less(t, a.Stats().LargestFree, size, "seed %d step %d", seed, step)
					continue
				}
				require.NoError(t, err, "seed %d step %d", seed, step)
				require.NotContains(t, m.sizes, p, "seed %d step %d: pointer reused while live", seed, step)

				buf, err := a.Bytes(p)
				require.NoError(t, err)
				b := byte(step)
				for i := range buf {
					buf[i] = b
				}
				m.sizes[p] = size
				m.fill[p] = b
			}

			require.NoError(t, verify.AllInvariants(a), "seed %d step %d", seed, step)
			checkModel(t, a, m)
		}
	}
}

func checkModel(t *testing.T, a *Allocator, m *model) {
	t.Helper()

	want := make([]chunk.Chunk, 0, len(m.sizes))
	inUse := 0
	for _, p := range m.live() {
		want = append(want, chunk.Chunk{Start: int(p), Size: m.sizes[p]})
		inUse += m.sizes[p]
	}
	require.Equal(t, want, a.Allocated())
	require.Equal(t, inUse, a.Stats().BytesInUse)

	for p, b := range m.fill {
		buf, err := a.Bytes(p)
		require.NoError(t, err)
		require.Equal(t, bytes.Repeat([]byte{b}, m.sizes[p]), buf, "contents of %d clobbered", p)
	}
}

// TestRandomWorkload_DrainsToOneChunk releases everything in random order and
// expects the arena to collapse back into a single free chunk.
func TestRandomWorkload_DrainsToOneChunk(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	a := newTestAllocator(t, 2048, 0)

	var ptrs []Ptr
	for {
		p, err := a.Allocate(1 + rng.Intn(64))
		if errors.Is(err, ErrOutOfSpace) {
			break
		}
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.NotEmpty(t, ptrs)

	rng.Shuffle(len(ptrs), func(i, j int) { ptrs[i], ptrs[j] = ptrs[j], ptrs[i] })
	for _, p := range ptrs {
		require.NoError(t, a.Release(p))
		require.NoError(t, verify.AllInvariants(a))
	}
	require.Equal(t, []chunk.Chunk{{Start: 0, Size: 2048}}, a.Free())
}

func FuzzAllocateRelease(f *testing.F) {
	f.Add([]byte{10, 20, 0x80, 5, 0x81, 30})
	f.Add([]byte{0, 0, 0x80, 0x80})
	f.Add([]byte{255, 255, 255, 0x82, 1})

	f.Fuzz(func(t *testing.T, ops []byte) {
		a, err := New(Config{ArenaSize: 512, RegistryCapacity: 16})
		require.NoError(t, err)
		defer a.Close()

		var live []Ptr
		for _, op := range ops {
			if op&0x80 != 0 {
				if len(live) == 0 {
					continue
				}
				i := int(op&0x7f) % len(live)
				require.NoError(t, a.Release(live[i]))
				live = slices.Delete(live, i, i+1)
			} else {
				p, err := a.Allocate(int(op))
				switch {
				case errors.Is(err, ErrOutOfSpace), errors.Is(err, ErrCapacityExceeded):
					continue
				case err != nil:
					t.Fatalf("Allocate(%d): %v", op, err)
				}
				if p != Nil {
					live = append(live, p)
				}
			}
			require.NoError(t, verify.AllInvariants(a))
		}
	})
}
