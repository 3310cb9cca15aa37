package chunk

import "fmt"

// Chunk is the half-open byte range [Start, Start+Size) within an arena.
type Chunk struct {
	Start int `json:"start"`
	Size  int `json:"size"`
}

// End returns the first offset past the chunk.
func (c Chunk) End() int {
	return c.Start + c.Size
}

// Adjacent reports whether next begins exactly where c ends.
func (c Chunk) Adjacent(next Chunk) bool {
	return c.End() == next.Start
}

// Overlaps reports whether c and o share at least one byte.
func (c Chunk) Overlaps(o Chunk) bool {
	return c.Start < o.End() && o.Start < c.End()
}

// Valid reports whether c describes a non-empty range at a non-negative offset.
func (c Chunk) Valid() bool {
	return c.Start >= 0 && c.Size > 0
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%d,+%d)", c.Start, c.Size)
}
