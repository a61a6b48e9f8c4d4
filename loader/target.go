package loader

import "debug/elf"

// MemorySink receives the bytes of a loaded image at physical addresses.
// Write must not retain or modify data after it returns.
type MemorySink interface {
	Write(addr uint64, data []byte) error
}

// MemorySizer reports the usable memory size handed to the loaded image.
type MemorySizer interface {
	MemorySize() uint64
}

// FixedMemorySize is a MemorySizer for a platform with a known RAM size.
type FixedMemorySize uint64

// MemorySize returns s.
func (s FixedMemorySize) MemorySize() uint64 {
	return uint64(s)
}

// Entry is the argument set passed to a BootTarget. The image is entered as
// entry(MemorySize, CommandLine).
type Entry struct {
	Address     uint64
	MemorySize  uint64
	CommandLine string

	// Class and Machine identify the image for targets that need to know
	// the instruction set at Address.
	Class   elf.Class
	Machine elf.Machine
}

// BootTarget performs the final control transfer. On hardware Transfer never
// returns. Simulated targets return so the caller can inspect the result.
type BootTarget interface {
	Transfer(entry Entry)
}

// TargetFunc adapts a function to a BootTarget.
type TargetFunc func(entry Entry)

// Transfer calls f(entry).
func (f TargetFunc) Transfer(entry Entry) {
	f(entry)
}
