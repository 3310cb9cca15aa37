package chunk

import "errors"

var (
	// ErrCapacityExceeded indicates an insert into a registry that is already full.
	ErrCapacityExceeded = errors.New("chunk: registry capacity exceeded")

	// ErrOutOfRange indicates an index outside [0, Len()).
	ErrOutOfRange = errors.New("chunk: index out of range")

	// ErrInvalidChunk indicates a chunk with a negative start or a non-positive size.
	ErrInvalidChunk = errors.New("chunk: start must be >= 0 and size > 0")

	// ErrDuplicateStart indicates an insert whose start is already present.
	ErrDuplicateStart = errors.New("chunk: duplicate start offset")
)
