// Package alloc provides a best-fit allocator over a single fixed-size arena.
//
// # Overview
//
// The allocator hands out byte ranges of one arena that is mapped once at
// construction and never grown. It tracks state in two chunk registries:
// one for ranges in use and one for free ranges. Allocation scans the free
// registry for the best fit, carves the request from the front of that chunk
// and returns the remainder to the free registry. Release moves a chunk back
// and coalesces it with any physically adjacent free neighbours.
//
// # Usage Example
//
//	a, err := alloc.New(alloc.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, err := a.Allocate(26)
//	if err != nil {
//	    return err
//	}
//	buf, _ := a.Bytes(p)
//	copy(buf, "abcdefghijklmnopqrstuvwxyz")
//
//	if err := a.Release(p); err != nil {
//	    return err
//	}
//
// # Pointers
//
// A Ptr is the offset of an allocation within the arena. Offset 0 is a valid
// allocation, so the empty result is Nil (-1). Allocate(0) returns Nil and
// Release(Nil) is a no-op.
//
// # Errors
//
// ErrOutOfSpace is the only recoverable failure: the registries are unchanged
// and the caller may retry after releasing memory. Every other error reports a
// usage or invariant violation (IsFatal returns true) such as releasing a
// pointer that was never handed out or releasing it twice. All checks run
// before any registry is touched, so a failed call leaves no partial state.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Wrap one in Synchronized when more
// than one goroutine issues requests; both registries are then mutated under a
// single lock.
//
// # Debug Logging
//
// Set HEAP_LOG_ALLOC in the environment to log splits, merges and failures to
// stderr, or pass WithLogger to route them elsewhere.
package alloc
