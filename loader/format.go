// Package loader provides a bare-metal ELF program loader for big-endian
// ELF32 and ELF64 images.
//
// The loader validates the file header, copies every PT_LOAD segment to its
// physical address through a MemorySink, zero-fills the BSS tail and hands
// control to a BootTarget. Both ELF classes share one implementation; the
// differences between them live entirely in a Layout.
package loader

import (
	"debug/elf"
	"encoding/binary"
)

// CanonicalHeaderSize is the e_ehsize value the loader expects for both
// classes. Any other value only produces a warning.
const CanonicalHeaderSize = 52

const (
	identSize = elf.EI_NIDENT
	maxHeader = 64
)

var magic = [4]byte{0x7f, 'E', 'L', 'F'}

// field locates one big-endian value inside a fixed-size record.
type field struct {
	offset int
	width  int
}

func (f field) decode(record []byte) uint64 {
	b := record[f.offset : f.offset+f.width]
	switch f.width {
	case 2:
		return uint64(binary.BigEndian.Uint16(b))
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	}
	panic("loader: unsupported field width")
}

// Layout describes the header and program-header records of one ELF class.
type Layout struct {
	// Class is the EI_CLASS value images must carry.
	Class elf.Class
	// HeaderSize is the number of bytes read for the file header.
	HeaderSize int
	// ProgramHeaderSize is the stride between program-header entries.
	ProgramHeaderSize int

	// rewind makes the header reader seek to offset 0 before reading.
	rewind bool
	// addrMask truncates physical addresses to the class word width.
	addrMask uint64
	// hexDigits is the diagnostic print width for addresses.
	hexDigits int

	machine field
	entry   field
	phoff   field
	ehsize  field
	phnum   field

	phType   field
	phOffset field
	phPaddr  field
	phFilesz field
	phMemsz  field
}

// Layout32 is the ELF32 record layout.
var Layout32 = &Layout{
	Class:             elf.ELFCLASS32,
	HeaderSize:        52,
	ProgramHeaderSize: 32,
	addrMask:          0xffffffff,
	hexDigits:         8,

	machine: field{18, 2},
	entry:   field{24, 4},
	phoff:   field{28, 4},
	ehsize:  field{40, 2},
	phnum:   field{44, 2},

	phType:   field{0, 4},
	phOffset: field{4, 4},
	phPaddr:  field{12, 4},
	phFilesz: field{16, 4},
	phMemsz:  field{20, 4},
}

// Layout64 is the ELF64 record layout.
var Layout64 = &Layout{
	Class:             elf.ELFCLASS64,
	HeaderSize:        64,
	ProgramHeaderSize: 56,
	rewind:            true,
	addrMask:          ^uint64(0),
	hexDigits:         16,

	machine: field{18, 2},
	entry:   field{24, 8},
	phoff:   field{32, 8},
	ehsize:  field{52, 2},
	phnum:   field{56, 2},

	phType:   field{0, 4},
	phOffset: field{8, 8},
	phPaddr:  field{24, 8},
	phFilesz: field{32, 8},
	phMemsz:  field{40, 8},
}

// LayoutFor returns the layout for an ELF class, or nil if the class is not
// supported.
func LayoutFor(class elf.Class) *Layout {
	switch class {
	case elf.ELFCLASS32:
		return Layout32
	case elf.ELFCLASS64:
		return Layout64
	default:
		return nil
	}
}

// wrap truncates an address to the class word width.
func (l *Layout) wrap(addr uint64) uint64 {
	return addr & l.addrMask
}

// span limits a write of n bytes at addr so it stops at the top of the
// class address space. The rest continues at address zero.
func (l *Layout) span(addr, n uint64) uint64 {
	if room := l.addrMask - addr; room < n-1 {
		return room + 1
	}
	return n
}

// Header is the decoded part of an ELF file header the loader relies on.
type Header struct {
	Class               elf.Class
	Data                elf.Data
	Machine             elf.Machine
	Entry               uint64
	ProgramHeaderOffset uint64
	HeaderSize          uint16
	ProgramHeaderCount  uint16
}

func (l *Layout) decodeHeader(record []byte) Header {
	return Header{
		Class:               elf.Class(record[elf.EI_CLASS]),
		Data:                elf.Data(record[elf.EI_DATA]),
		Machine:             elf.Machine(l.machine.decode(record)),
		Entry:               l.entry.decode(record),
		ProgramHeaderOffset: l.phoff.decode(record),
		HeaderSize:          uint16(l.ehsize.decode(record)),
		ProgramHeaderCount:  uint16(l.phnum.decode(record)),
	}
}

// ProgramHeader describes one segment of the image.
type ProgramHeader struct {
	Type     elf.ProgType
	Offset   uint64
	PhysAddr uint64
	FileSize uint64
	MemSize  uint64
}

// Loadable reports whether the segment is PT_LOAD.
func (ph ProgramHeader) Loadable() bool {
	return ph.Type == elf.PT_LOAD
}

// BSSSize returns the number of bytes to zero after the file contents.
func (ph ProgramHeader) BSSSize() uint64 {
	if ph.MemSize <= ph.FileSize {
		return 0
	}
	return ph.MemSize - ph.FileSize
}

func (l *Layout) decodeProgramHeader(record []byte) ProgramHeader {
	return ProgramHeader{
		Type:     elf.ProgType(l.phType.decode(record)),
		Offset:   l.phOffset.decode(record),
		PhysAddr: l.phPaddr.decode(record),
		FileSize: l.phFilesz.decode(record),
		MemSize:  l.phMemsz.decode(record),
	}
}
