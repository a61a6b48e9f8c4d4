//go:build !linux

package memory

import (
	"errors"
	"fmt"
)

// DefaultDevMemPath is the character device exposing physical memory.
const DefaultDevMemPath = "/dev/mem"

// DevMem is only available on Linux.
type DevMem struct{}

// OpenDevMem always fails outside Linux.
func OpenDevMem(path string) (*DevMem, error) {
	return nil, fmt.Errorf("failed to open %s: %w", path, errors.ErrUnsupported)
}

// Write always fails outside Linux.
func (d *DevMem) Write(addr uint64, data []byte) error {
	return errors.ErrUnsupported
}

// Close is a no-op.
func (d *DevMem) Close() error {
	return nil
}
