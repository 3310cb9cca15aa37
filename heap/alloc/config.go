package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/chunk"
)

// DefaultArenaSize is the arena size used by DefaultConfig.
const DefaultArenaSize = 640000

// Config sizes an allocator.
type Config struct {
	// ArenaSize is the fixed number of bytes in the arena.
	ArenaSize int

	// RegistryCapacity bounds the number of chunks in each registry.
	// Zero selects chunk.DefaultCapacity.
	RegistryCapacity int
}

// DefaultConfig is a 640000-byte arena with 1024-entry registries.
var DefaultConfig = Config{
	ArenaSize:        DefaultArenaSize,
	RegistryCapacity: chunk.DefaultCapacity,
}

// Validate reports whether c can back an allocator.
func (c Config) Validate() error {
	if c.ArenaSize <= 0 {
		return fmt.Errorf("%w: arena size %d", ErrInvalidConfig, c.ArenaSize)
	}
	if c.RegistryCapacity < 0 {
		return fmt.Errorf("%w: registry capacity %d", ErrInvalidConfig, c.RegistryCapacity)
	}
	return nil
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithLogger routes allocator diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}
