package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
)

// readHeader reads and validates the file header. Checks run in a fixed
// order: magic, class, encoding, header size (warning only), segment count.
func (l *Loader) readHeader(r io.ReadSeeker, layout *Layout) (Header, []StructuralWarning, error) {
	if layout.rewind {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return Header{}, nil, l.fail(KindIO, err, "Failed to seek to ELF header.\n")
		}
	}

	// The ident is validated before the rest of the record is read so a
	// short non-ELF file is reported as a format problem.
	record := l.record[:layout.HeaderSize]
	ident := record[:identSize]
	if _, err := io.ReadFull(r, ident); err != nil {
		return Header{}, nil, l.fail(KindIO, err, "Failed to read ELF identification.\n")
	}
	if err := l.checkIdent(ident, layout.Class); err != nil {
		return Header{}, nil, err
	}

	if _, err := io.ReadFull(r, record[identSize:]); err != nil {
		return Header{}, nil, l.fail(KindIO, err, "Failed to read ELF header.\n")
	}
	hdr := layout.decodeHeader(record)

	var warnings []StructuralWarning
	if hdr.HeaderSize != CanonicalHeaderSize {
		l.console.Printf("Warning: ELF header size is not %d bytes. Found: %d\n",
			CanonicalHeaderSize, hdr.HeaderSize)
		warnings = append(warnings, StructuralWarning{
			Field:    "e_ehsize",
			Expected: CanonicalHeaderSize,
			Found:    uint64(hdr.HeaderSize),
		})
	}

	if hdr.ProgramHeaderCount == 0 {
		return Header{}, nil, l.fail(KindEmptyImage, ErrNoSegments,
			"Found zero segments in ELF file. Aborting load.\n")
	}

	return hdr, warnings, nil
}

func (l *Loader) checkIdent(ident []byte, class elf.Class) error {
	if !bytes.Equal(ident[:len(magic)], magic[:]) {
		return l.fail(KindFormat,
			fmt.Errorf("%w: % x", ErrBadMagic, ident[:len(magic)]),
			"Bad ELF magic found. Found: %#02x %#02x %#02x %#02x.\n",
			ident[0], ident[1], ident[2], ident[3])
	}

	if found := elf.Class(ident[elf.EI_CLASS]); found != class {
		return l.fail(KindFormat,
			fmt.Errorf("%w: expected %v, found %v", ErrWrongClass, class, found),
			"Invalid ELF machine class found. Found: %02x.\n", byte(found))
	}

	if ident[elf.EI_DATA] != byte(elf.ELFDATA2MSB) {
		return l.fail(KindFormat,
			fmt.Errorf("%w: found %v", ErrWrongEncoding, elf.Data(ident[elf.EI_DATA])),
			"Non-big endian ELF file detected. Aborting load.\n")
	}

	return nil
}
