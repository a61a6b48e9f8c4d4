//go:build linux

package memory

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultDevMemPath is the character device exposing physical memory.
const DefaultDevMemPath = "/dev/mem"

// DevMem writes to real physical memory through mappings of /dev/mem.
// Each write maps only the pages it covers.
type DevMem struct {
	f        *os.File
	pageSize uint64
}

// OpenDevMem opens the physical memory device at path for writing.
func OpenDevMem(path string) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &DevMem{f: f, pageSize: uint64(unix.Getpagesize())}, nil
}

// Write copies data to the physical address addr.
func (d *DevMem) Write(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	start := addr &^ (d.pageSize - 1)
	end := (addr + uint64(len(data)) + d.pageSize - 1) &^ (d.pageSize - 1)
	if end <= start || start > math.MaxInt64 || end-start > math.MaxInt32 {
		return fmt.Errorf("cannot map physical range 0x%x+0x%x", addr, len(data))
	}

	m, err := unix.Mmap(int(d.f.Fd()), int64(start), int(end-start),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("failed to map physical page 0x%x: %w", start, err)
	}

	copy(m[addr-start:], data)

	if err := unix.Munmap(m); err != nil {
		return fmt.Errorf("failed to unmap physical page 0x%x: %w", start, err)
	}
	return nil
}

// Close releases the device.
func (d *DevMem) Close() error {
	return d.f.Close()
}
