package alloc

// Stats holds allocator counters and a summary of the current layout.
type Stats struct {
	AllocCalls     int // Allocate calls, including zero-size and failed ones
	ReleaseCalls   int // Release calls, including Nil
	FailedAllocs   int // Allocate calls that returned ErrOutOfSpace
	SplitCount     int // Allocations that returned a remainder to the free registry
	CoalesceMerges int // Adjacent free chunk pairs merged

	BytesInUse     int // Sum of allocated chunk sizes
	PeakBytesInUse int // High-water mark of BytesInUse

	ArenaSize       int
	AllocatedChunks int
	FreeChunks      int
	FreeBytes       int
	LargestFree     int
}
