package alloc

import (
	"io"
	"sync"

	"github.com/joshuapare/heapkit/heap/chunk"
)

// Synchronized wraps an Allocator for use by multiple goroutines.
// Each call holds one mutex for its whole duration, so a chunk moving between
// the allocated and free registries is never observed half-complete.
type Synchronized struct {
	mu sync.Mutex
	a  *Allocator
}

// NewSynchronized wraps a. The caller must not use a directly afterwards.
func NewSynchronized(a *Allocator) *Synchronized {
	return &Synchronized{a: a}
}

// Allocate is Allocator.Allocate under the lock.
func (s *Synchronized) Allocate(size int) (Ptr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size)
}

// Release is Allocator.Release under the lock.
func (s *Synchronized) Release(p Ptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release(p)
}

// Bytes is Allocator.Bytes under the lock. Writing to the returned slice
// needs no lock while p stays allocated.
func (s *Synchronized) Bytes(p Ptr) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Bytes(p)
}

// ArenaSize returns the fixed arena size in bytes.
func (s *Synchronized) ArenaSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.ArenaSize()
}

// Allocated returns a copy of the allocated registry.
func (s *Synchronized) Allocated() []chunk.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocated()
}

// Free returns a copy of the free registry.
func (s *Synchronized) Free() []chunk.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Free()
}

// Snapshot returns both registries and the arena size from one critical
// section, so the three values describe the same state.
func (s *Synchronized) Snapshot() (arenaSize int, allocated, free []chunk.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.ArenaSize(), s.a.Allocated(), s.a.Free()
}

// Dump writes both registries to w.
func (s *Synchronized) Dump(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Dump(w)
}

// Stats returns allocator counters.
func (s *Synchronized) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Stats()
}

// Close unmaps the arena.
func (s *Synchronized) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Close()
}
