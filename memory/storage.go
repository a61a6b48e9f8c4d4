// Package memory provides the physical memory sinks an image is loaded into.
package memory

import (
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// Storage is simulated physical RAM covering [base, base+capacity). It is
// backed by an Akita storage, which allocates lazily, so large capacities
// are cheap until written.
type Storage struct {
	base     uint64
	capacity uint64
	storage  *mem.Storage
}

// NewStorage creates simulated RAM of the given capacity starting at base.
func NewStorage(base, capacity uint64) *Storage {
	return &Storage{
		base:     base,
		capacity: capacity,
		storage:  mem.NewStorage(capacity),
	}
}

// Base returns the lowest physical address of the RAM.
func (s *Storage) Base() uint64 {
	return s.base
}

// Capacity returns the size of the RAM in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// MemorySize reports the capacity, so a Storage can also serve as the
// loader's platform memory-size source.
func (s *Storage) MemorySize() uint64 {
	return s.capacity
}

// Write stores data at the physical address addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	offset, err := s.translate(addr, uint64(len(data)))
	if err != nil {
		return err
	}
	return s.storage.Write(offset, data)
}

// Read returns n bytes starting at the physical address addr.
func (s *Storage) Read(addr uint64, n int) ([]byte, error) {
	offset, err := s.translate(addr, uint64(n))
	if err != nil {
		return nil, err
	}
	return s.storage.Read(offset, uint64(n))
}

func (s *Storage) translate(addr, length uint64) (uint64, error) {
	if addr < s.base || addr-s.base > s.capacity || length > s.capacity-(addr-s.base) {
		return 0, fmt.Errorf("physical range 0x%x+0x%x outside RAM [0x%x, 0x%x)",
			addr, length, s.base, s.base+s.capacity)
	}
	return addr - s.base, nil
}
