package alloc

import (
	"errors"

	"github.com/joshuapare/heapkit/heap/chunk"
)

var (
	// ErrOutOfSpace indicates that no free chunk is large enough for the request.
	// It is the only recoverable allocation failure.
	ErrOutOfSpace = errors.New("alloc: no free chunk large enough")

	// ErrInvalidRelease indicates a release of a pointer that is not currently allocated.
	ErrInvalidRelease = errors.New("alloc: release of untracked pointer")

	// ErrBadPtr indicates a lookup of a pointer that is not currently allocated.
	ErrBadPtr = errors.New("alloc: pointer is not an allocated chunk")

	// ErrInvalidSize indicates a negative allocation size.
	ErrInvalidSize = errors.New("alloc: size must be >= 0")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: allocator closed")

	// ErrInvalidConfig indicates a Config that cannot back an arena.
	ErrInvalidConfig = errors.New("alloc: invalid config")

	// ErrCapacityExceeded indicates that a registry has no room for another chunk.
	ErrCapacityExceeded = chunk.ErrCapacityExceeded

	// ErrOutOfRange indicates a registry index outside its bounds.
	ErrOutOfRange = chunk.ErrOutOfRange
)

// IsFatal reports whether err is a usage or invariant violation rather than
// the recoverable out-of-space condition. Fatal errors must not be retried.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrOutOfSpace)
}
