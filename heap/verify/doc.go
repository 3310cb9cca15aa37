// Package verify provides invariant checks for heap allocator layouts.
//
// # Overview
//
// The checks are used by tests and by heapctl --verify to confirm that an
// allocator's registries describe a consistent arena:
//
//   - Sortedness: each registry is strictly ascending by start offset
//   - Bounds: every chunk is non-empty and lies within [0, arenaSize)
//   - Non-overlap: no two chunks in one registry share a byte
//   - Exclusion: no byte is both allocated and free
//   - Conservation: every arena byte is either allocated or free
//
// Layout runs all but Conservation. Conserved and AllInvariants run all five.
//
// Byte coverage is tracked with roaring bitmaps, so overlap and exclusion
// checks stay cheap even for large arenas with few chunks. The bitmaps are
// 64-bit, so arenas beyond 4 GiB are checked like any other.
//
// # Quick Start
//
//	if err := verify.AllInvariants(a); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at offset %d\n", verr.Type, verr.Offset)
//	    }
//	}
//
// FullyCoalesced is a stricter check that holds after every Allocate and
// Release: no two free chunks touch.
package verify
