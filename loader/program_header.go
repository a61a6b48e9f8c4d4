package loader

import (
	"fmt"
	"io"
	"math"
)

// walker iterates the program-header table one entry at a time. It seeks to
// each entry before reading it, so callers may move the file position
// between calls to Next.
type walker struct {
	r      io.ReadSeeker
	layout *Layout
	base   uint64
	count  int

	index  int
	record []byte
	cur    ProgramHeader
	err    error
}

func newWalker(r io.ReadSeeker, layout *Layout, hdr Header) *walker {
	return &walker{
		r:      r,
		layout: layout,
		base:   hdr.ProgramHeaderOffset,
		count:  int(hdr.ProgramHeaderCount),
		index:  -1,
		record: make([]byte, layout.ProgramHeaderSize),
	}
}

// Next advances to the next entry. It returns false when the table is
// exhausted or a read failed; Err distinguishes the two.
func (w *walker) Next() bool {
	if w.err != nil || w.index+1 >= w.count {
		return false
	}
	w.index++

	pos := w.base + uint64(w.index)*uint64(w.layout.ProgramHeaderSize)
	if pos < w.base || pos > math.MaxInt64 {
		w.err = fmt.Errorf("program header offset 0x%x out of range", pos)
		return false
	}
	if _, err := w.r.Seek(int64(pos), io.SeekStart); err != nil {
		w.err = err
		return false
	}
	if _, err := io.ReadFull(w.r, w.record); err != nil {
		w.err = err
		return false
	}

	w.cur = w.layout.decodeProgramHeader(w.record)
	return true
}

// ProgramHeader returns the current entry.
func (w *walker) ProgramHeader() ProgramHeader {
	return w.cur
}

// Index returns the index of the current entry.
func (w *walker) Index() int {
	return w.index
}

// Err returns the first error encountered by Next.
func (w *walker) Err() error {
	return w.err
}
