// Package testimage builds small synthetic ELF images for tests.
package testimage

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Segment is one program header plus the file bytes it refers to.
type Segment struct {
	Type     elf.ProgType
	PhysAddr uint64
	Data     []byte
	MemSize  uint64
	// VirtAddr is written to p_vaddr. Zero writes PhysAddr.
	VirtAddr uint64
	// Offset places Data at a fixed file offset. Zero packs the data
	// after the program-header table.
	Offset uint64
}

// Load returns a PT_LOAD segment. memSize below len(data) is raised to it.
func Load(paddr uint64, data []byte, memSize uint64) Segment {
	if memSize < uint64(len(data)) {
		memSize = uint64(len(data))
	}
	return Segment{Type: elf.PT_LOAD, PhysAddr: paddr, Data: data, MemSize: memSize}
}

// Image describes an ELF file to build.
type Image struct {
	Class   elf.Class
	Data    elf.Data
	Machine elf.Machine
	Entry   uint64
	// HeaderSize is written to e_ehsize. Zero writes 52.
	HeaderSize uint16
	Segments   []Segment
}

// New returns a big-endian image of the given class with the given segments.
func New(class elf.Class, entry uint64, segments ...Segment) *Image {
	return &Image{
		Class:    class,
		Data:     elf.ELFDATA2MSB,
		Machine:  elf.EM_MIPS,
		Entry:    entry,
		Segments: segments,
	}
}

func (img *Image) is64() bool {
	return img.Class == elf.ELFCLASS64
}

func (img *Image) order() binary.ByteOrder {
	if img.Data == elf.ELFDATA2LSB {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (img *Image) headerSize() int {
	if img.is64() {
		return 64
	}
	return 52
}

func (img *Image) programHeaderSize() int {
	if img.is64() {
		return 56
	}
	return 32
}

// Offsets returns the file offset of each segment's data.
func (img *Image) Offsets() []uint64 {
	offsets := make([]uint64, len(img.Segments))
	next := uint64(img.headerSize() + len(img.Segments)*img.programHeaderSize())
	for i, seg := range img.Segments {
		if seg.Offset != 0 {
			offsets[i] = seg.Offset
			continue
		}
		offsets[i] = next
		next += uint64(len(seg.Data))
	}
	return offsets
}

// Bytes encodes the image.
func (img *Image) Bytes() []byte {
	bo := img.order()
	offsets := img.Offsets()

	size := uint64(img.headerSize() + len(img.Segments)*img.programHeaderSize())
	for i, seg := range img.Segments {
		if end := offsets[i] + uint64(len(seg.Data)); end > size {
			size = end
		}
	}
	out := make([]byte, size)

	ehsize := img.HeaderSize
	if ehsize == 0 {
		ehsize = 52
	}

	hdr := out[:img.headerSize()]
	copy(hdr, []byte{0x7f, 'E', 'L', 'F'})
	hdr[elf.EI_CLASS] = byte(img.Class)
	hdr[elf.EI_DATA] = byte(img.Data)
	hdr[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	bo.PutUint16(hdr[16:], uint16(elf.ET_EXEC))
	bo.PutUint16(hdr[18:], uint16(img.Machine))
	bo.PutUint32(hdr[20:], uint32(elf.EV_CURRENT))

	phoff := uint64(img.headerSize())
	phnum := uint16(len(img.Segments))
	if img.is64() {
		bo.PutUint64(hdr[24:], img.Entry)
		bo.PutUint64(hdr[32:], phoff)
		bo.PutUint16(hdr[52:], ehsize)
		bo.PutUint16(hdr[54:], uint16(img.programHeaderSize()))
		bo.PutUint16(hdr[56:], phnum)
	} else {
		bo.PutUint32(hdr[24:], uint32(img.Entry))
		bo.PutUint32(hdr[28:], uint32(phoff))
		bo.PutUint16(hdr[40:], ehsize)
		bo.PutUint16(hdr[42:], uint16(img.programHeaderSize()))
		bo.PutUint16(hdr[44:], phnum)
	}

	for i, seg := range img.Segments {
		start := int(phoff) + i*img.programHeaderSize()
		ph := out[start : start+img.programHeaderSize()]
		filesz := uint64(len(seg.Data))
		vaddr := seg.VirtAddr
		if vaddr == 0 {
			vaddr = seg.PhysAddr
		}

		if img.is64() {
			bo.PutUint32(ph[0:], uint32(seg.Type))
			bo.PutUint32(ph[4:], uint32(elf.PF_R|elf.PF_W|elf.PF_X))
			bo.PutUint64(ph[8:], offsets[i])
			bo.PutUint64(ph[16:], vaddr)
			bo.PutUint64(ph[24:], seg.PhysAddr)
			bo.PutUint64(ph[32:], filesz)
			bo.PutUint64(ph[40:], seg.MemSize)
			bo.PutUint64(ph[48:], 0x1000)
		} else {
			bo.PutUint32(ph[0:], uint32(seg.Type))
			bo.PutUint32(ph[4:], uint32(offsets[i]))
			bo.PutUint32(ph[8:], uint32(vaddr))
			bo.PutUint32(ph[12:], uint32(seg.PhysAddr))
			bo.PutUint32(ph[16:], uint32(filesz))
			bo.PutUint32(ph[20:], uint32(seg.MemSize))
			bo.PutUint32(ph[24:], uint32(elf.PF_R|elf.PF_W|elf.PF_X))
			bo.PutUint32(ph[28:], 0x1000)
		}

		copy(out[offsets[i]:], seg.Data)
	}

	return out
}

// Reader returns the encoded image as a seekable reader.
func (img *Image) Reader() *bytes.Reader {
	return bytes.NewReader(img.Bytes())
}
