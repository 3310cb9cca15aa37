package verify

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/joshuapare/heapkit/heap/chunk"
)

// Source is anything that can report a consistent view of an arena layout.
type Source interface {
	Snapshot() (arenaSize int, allocated, free []chunk.Chunk)
}

// ValidationError describes one invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the layout of s, that every arena byte is either
// allocated or free, and that its free space is fully coalesced. Returns the
// first error encountered, or nil.
func AllInvariants(s Source) error {
	size, allocated, free := s.Snapshot()
	if err := Conserved(size, allocated, free); err != nil {
		return err
	}
	return FullyCoalesced(free)
}

// Layout validates two registries against an arena of arenaSize bytes.
// Bytes covered by neither registry are allowed here; see Conserved.
func Layout(arenaSize int, allocated, free []chunk.Chunk) error {
	_, err := layout(arenaSize, allocated, free)
	return err
}

// Conserved runs the Layout checks and also reports an error when some byte
// of [0, arenaSize) is tracked by neither registry.
func Conserved(arenaSize int, allocated, free []chunk.Chunk) error {
	covered, err := layout(arenaSize, allocated, free)
	if err != nil {
		return err
	}
	if covered.GetCardinality() == uint64(arenaSize) {
		return nil
	}
	lost := roaring64.Flip(covered, 0, uint64(arenaSize))
	return &ValidationError{
		Type:    "Conservation",
		Message: fmt.Sprintf("%d bytes are neither allocated nor free", lost.GetCardinality()),
		Offset:  int(lost.Minimum()),
	}
}

// layout runs the Layout checks and returns the union of both registries.
func layout(arenaSize int, allocated, free []chunk.Chunk) (*roaring64.Bitmap, error) {
	if arenaSize <= 0 {
		return nil, &ValidationError{
			Type:    "Arena",
			Message: fmt.Sprintf("invalid arena size %d", arenaSize),
			Offset:  -1,
		}
	}

	used, err := registry("Allocated", arenaSize, allocated)
	if err != nil {
		return nil, err
	}
	avail, err := registry("Free", arenaSize, free)
	if err != nil {
		return nil, err
	}

	if used.Intersects(avail) {
		both := roaring64.And(used, avail)
		return nil, &ValidationError{
			Type:    "Exclusion",
			Message: fmt.Sprintf("%d bytes are both allocated and free", both.GetCardinality()),
			Offset:  int(both.Minimum()),
		}
	}
	used.Or(avail)
	return used, nil
}

// FullyCoalesced reports an error when two free chunks touch.
func FullyCoalesced(free []chunk.Chunk) error {
	for i := 1; i < len(free); i++ {
		if free[i-1].Adjacent(free[i]) {
			return &ValidationError{
				Type:    "Coalesce",
				Message: fmt.Sprintf("free chunks %s and %s are adjacent", free[i-1], free[i]),
				Offset:  free[i].Start,
			}
		}
	}
	return nil
}

// registry checks one registry and returns the bytes it covers.
func registry(name string, arenaSize int, chunks []chunk.Chunk) (*roaring64.Bitmap, error) {
	covered := roaring64.New()
	for i, c := range chunks {
		if !c.Valid() || c.End() > arenaSize {
			return nil, &ValidationError{
				Type:    name + "Bounds",
				Message: fmt.Sprintf("chunk %s outside [0,%d)", c, arenaSize),
				Offset:  c.Start,
			}
		}
		if i > 0 && chunks[i-1].Start >= c.Start {
			return nil, &ValidationError{
				Type:    name + "Order",
				Message: fmt.Sprintf("chunk %s follows %s", c, chunks[i-1]),
				Offset:  c.Start,
			}
		}

		span := roaring64.New()
		span.AddRange(uint64(c.Start), uint64(c.End()))
		if covered.Intersects(span) {
			return nil, &ValidationError{
				Type:    name + "Overlap",
				Message: fmt.Sprintf("chunk %s overlaps an earlier chunk", c),
				Offset:  c.Start,
			}
		}
		covered.Or(span)
	}
	return covered, nil
}
