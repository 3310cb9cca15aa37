//go:build unix

// Package region provides platform-specific anonymous memory mappings used as
// heap arenas, so arena bytes live outside the Go-managed heap.
package region

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map returns a zeroed, read-write anonymous mapping of size bytes and a
// cleanup function that unmaps it.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("region: invalid size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}
