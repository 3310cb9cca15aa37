//go:build !unix && !windows

// Package region provides platform-specific anonymous memory mappings used as
// heap arenas, so arena bytes live outside the Go-managed heap.
package region

import "fmt"

// Map allocates a plain byte slice when no mapping primitive is available.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("region: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
