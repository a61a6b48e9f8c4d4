package loader

import (
	"fmt"
	"io"
	"math"
)

// materialize places one PT_LOAD segment: filesz bytes copied from the
// image to paddr, followed by memsz-filesz zero bytes.
func (l *Loader) materialize(r io.ReadSeeker, layout *Layout, ph ProgramHeader) error {
	l.console.Debugf("Init data: %0*x length %0*x\n",
		layout.hexDigits, ph.PhysAddr, layout.hexDigits, ph.FileSize)

	if ph.Offset > math.MaxInt64 {
		return l.fail(KindIO, fmt.Errorf("segment offset 0x%x out of range", ph.Offset),
			"Failed to seek to segment data.\n")
	}
	if _, err := r.Seek(int64(ph.Offset), io.SeekStart); err != nil {
		return l.fail(KindIO, err,
			"Failed to seek to segment data at offset 0x%x.\n", ph.Offset)
	}

	if err := l.copySegment(r, layout, ph.PhysAddr, ph.FileSize); err != nil {
		return err
	}

	if bss := ph.BSSSize(); bss > 0 {
		addr := layout.wrap(ph.PhysAddr + ph.FileSize)
		l.console.Debugf("Uninit data: %0*x, len %0*x\n",
			layout.hexDigits, addr, layout.hexDigits, bss)
		if err := l.zeroFill(layout, addr, bss); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) copySegment(r io.Reader, layout *Layout, addr, length uint64) error {
	for length > 0 {
		n := layout.span(addr, min(length, uint64(len(l.chunk))))
		buf := l.chunk[:n]

		if _, err := io.ReadFull(r, buf); err != nil {
			return l.fail(KindIO, err,
				"Failed to read segment data for 0x%0*x.\n", layout.hexDigits, addr)
		}
		if err := l.memory.Write(addr, buf); err != nil {
			return l.fail(KindMemory, err,
				"Failed to write segment data at 0x%0*x.\n", layout.hexDigits, addr)
		}

		addr = layout.wrap(addr + n)
		length -= n
	}
	return nil
}

func (l *Loader) zeroFill(layout *Layout, addr, length uint64) error {
	for length > 0 {
		n := layout.span(addr, min(length, uint64(len(l.zeros))))

		if err := l.memory.Write(addr, l.zeros[:n]); err != nil {
			return l.fail(KindMemory, err,
				"Failed to clear memory at 0x%0*x.\n", layout.hexDigits, addr)
		}

		addr = layout.wrap(addr + n)
		length -= n
	}
	return nil
}
