package chunk

import (
	"fmt"
	"io"
	"iter"
)

const (
	// DefaultCapacity is the registry bound used when NewRegistry is given a
	// non-positive capacity.
	DefaultCapacity = 1024

	// initialSlots is the backing slice size allocated up front. The slice
	// grows on demand up to the registry capacity.
	initialSlots = 64
)

// Registry is an ordered collection of non-overlapping chunks sorted
// ascending by Start and bounded by a fixed capacity.
type Registry struct {
	chunks   []Chunk
	capacity int
}

// NewRegistry returns an empty registry that holds at most capacity chunks.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		chunks:   make([]Chunk, 0, min(capacity, initialSlots)),
		capacity: capacity,
	}
}

// Len returns the number of chunks in the registry.
func (r *Registry) Len() int { return len(r.chunks) }

// Cap returns the maximum number of chunks the registry can hold.
func (r *Registry) Cap() int { return r.capacity }

// Full reports whether another Insert would exceed capacity.
func (r *Registry) Full() bool { return len(r.chunks) >= r.capacity }

// At returns the chunk at index i.
func (r *Registry) At(i int) (Chunk, error) {
	if i < 0 || i >= len(r.chunks) {
		return Chunk{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, len(r.chunks))
	}
	return r.chunks[i], nil
}

// Chunks returns a copy of the registry contents in ascending order.
func (r *Registry) Chunks() []Chunk {
	out := make([]Chunk, len(r.chunks))
	copy(out, r.chunks)
	return out
}

// All iterates over index and chunk pairs in ascending order. The registry
// must not be modified during iteration.
func (r *Registry) All() iter.Seq2[int, Chunk] {
	return func(yield func(int, Chunk) bool) {
		for i, c := range r.chunks {
			if !yield(i, c) {
				return
			}
		}
	}
}

// TotalSize returns the sum of all chunk sizes.
func (r *Registry) TotalSize() int {
	total := 0
	for _, c := range r.chunks {
		total += c.Size
	}
	return total
}

// Find returns the index of the chunk whose Start equals start.
// An empty registry reports not found.
func (r *Registry) Find(start int) (int, bool) {
	lo, hi := 0, len(r.chunks)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch s := r.chunks[mid].Start; {
		case s == start:
			return mid, true
		case s < start:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1, false
}

// Insert adds c and restores ascending order by swapping it leftward.
// It fails without modifying the registry when the registry is full, when c
// is not a valid chunk, or when a chunk with the same Start already exists.
func (r *Registry) Insert(c Chunk) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidChunk, c)
	}
	if r.Full() {
		return fmt.Errorf("%w: cap %d", ErrCapacityExceeded, r.capacity)
	}
	if _, ok := r.Find(c.Start); ok {
		return fmt.Errorf("%w: %d", ErrDuplicateStart, c.Start)
	}

	r.chunks = append(r.chunks, c)
	for i := len(r.chunks) - 1; i > 0 && r.chunks[i].Start < r.chunks[i-1].Start; i-- {
		r.chunks[i], r.chunks[i-1] = r.chunks[i-1], r.chunks[i]
	}
	return nil
}

// Remove deletes the chunk at index i, shifting later entries left by one,
// and returns the removed chunk.
func (r *Registry) Remove(i int) (Chunk, error) {
	if i < 0 || i >= len(r.chunks) {
		return Chunk{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, i, len(r.chunks))
	}
	c := r.chunks[i]
	copy(r.chunks[i:], r.chunks[i+1:])
	r.chunks = r.chunks[:len(r.chunks)-1]
	return c, nil
}

// Coalesce merges physically adjacent chunks and returns the number of merges.
//
// The scan runs from the last-but-one entry down to the first, extending
// chunk[i] over chunk[i+1] and leaving a zero-size tombstone behind. Because
// chunk[i+1] has already absorbed everything to its right, a run of any length
// collapses into its first chunk in one pass. Tombstones are compacted out
// afterwards; when nothing merged the registry is left untouched.
func (r *Registry) Coalesce() int {
	merges := 0
	for i := len(r.chunks) - 2; i >= 0; i-- {
		if r.chunks[i].Adjacent(r.chunks[i+1]) {
			r.chunks[i].Size += r.chunks[i+1].Size
			r.chunks[i+1].Size = 0
			merges++
		}
	}
	if merges == 0 {
		return 0
	}

	n := 0
	for _, c := range r.chunks {
		if c.Size != 0 {
			r.chunks[n] = c
			n++
		}
	}
	clear(r.chunks[n:])
	r.chunks = r.chunks[:n]
	return merges
}

// Reset empties the registry, keeping its capacity.
func (r *Registry) Reset() {
	r.chunks = r.chunks[:0]
}

// Dump writes a human-readable listing of the registry to w.
func (r *Registry) Dump(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "%s Chunks (%d):\n", name, len(r.chunks)); err != nil {
		return err
	}
	for _, c := range r.chunks {
		if _, err := fmt.Fprintf(w, "  start: %d, size: %d\n", c.Start, c.Size); err != nil {
			return err
		}
	}
	return nil
}
