// Package chunk provides the byte-range bookkeeping used by the heap allocator.
//
// # Overview
//
// A Chunk is a half-open range [Start, Start+Size) inside a fixed arena. A
// Registry is an ordered, bounded collection of non-overlapping chunks kept
// ascending by Start. The allocator keeps two registries, one for chunks in
// use and one for free space, and moves chunks between them.
//
// # Registry Operations
//
//   - Find(start): binary search by start offset
//   - Insert(c): one insertion-sort step, swapping the new entry leftward
//   - Remove(i): shift every later entry left by one
//   - Coalesce(): merge physically adjacent chunks in a single right-to-left pass
//
// Registries hold copies of chunks, never references, so a Chunk returned from
// At or Chunks can be kept by the caller without aliasing registry state.
//
// # Thread Safety
//
// Registry instances are not thread-safe. The alloc package serializes access.
package chunk
