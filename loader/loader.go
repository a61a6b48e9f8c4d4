package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the size of the buffer segments are copied through.
const DefaultChunkSize = 64 * 1024

// Result summarizes a load that reached control transfer.
type Result struct {
	Header Header
	// LoadedBytes is the sum of memsz over all PT_LOAD segments.
	LoadedBytes uint64
	// Segments is the number of PT_LOAD segments materialized.
	Segments int
	// Skipped is the number of program headers of other types.
	Skipped int
	// Warnings lists non-fatal header anomalies.
	Warnings []StructuralWarning
}

// Loader loads ELF images into physical memory and starts them.
// A Loader is not safe for concurrent use.
type Loader struct {
	memory   MemorySink
	target   BootTarget
	platform MemorySizer
	console  *Console

	stdout    io.Writer
	verbose   bool
	chunkSize int

	state  State
	record [maxHeader]byte
	chunk  []byte
	zeros  []byte
}

// Option is a functional option for configuring the Loader.
type Option func(*Loader)

// WithStdout sets the writer diagnostics are printed to.
func WithStdout(w io.Writer) Option {
	return func(l *Loader) {
		l.stdout = w
	}
}

// WithVerbose enables per-segment debug lines.
func WithVerbose(verbose bool) Option {
	return func(l *Loader) {
		l.verbose = verbose
	}
}

// WithPlatform sets the source of the memory size passed to the image.
// Without it the image receives a memory size of zero.
func WithPlatform(p MemorySizer) Option {
	return func(l *Loader) {
		l.platform = p
	}
}

// WithChunkSize sets the copy buffer size. Values <= 0 are ignored.
func WithChunkSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// New creates a Loader writing segments to memory and handing control to
// target.
func New(memory MemorySink, target BootTarget, opts ...Option) *Loader {
	l := &Loader{
		memory:    memory,
		target:    target,
		platform:  FixedMemorySize(0),
		stdout:    os.Stdout,
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.console = NewConsole(l.stdout, l.verbose)
	l.chunk = make([]byte, l.chunkSize)
	l.zeros = make([]byte, l.chunkSize)

	return l
}

// State returns the state reached by the most recent load attempt.
func (l *Loader) State() State {
	return l.state
}

// Load32 loads an ELF32 image whose header starts at the current position
// of r.
func (l *Loader) Load32(r io.ReadSeeker, cmdLine string) (*Result, error) {
	return l.load(r, Layout32, cmdLine)
}

// Load64 loads an ELF64 image. The header is always read from offset 0.
func (l *Loader) Load64(r io.ReadSeeker, cmdLine string) (*Result, error) {
	return l.load(r, Layout64, cmdLine)
}

// Boot reads the class byte at offset 0 and dispatches to Load32 or Load64.
func (l *Loader) Boot(r io.ReadSeeker, cmdLine string) (*Result, error) {
	l.state = StateStart

	ident := l.record[:identSize]
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, l.fail(KindIO, err, "Failed to seek to ELF header.\n")
	}
	if _, err := io.ReadFull(r, ident); err != nil {
		return nil, l.fail(KindIO, err, "Failed to read ELF identification.\n")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, l.fail(KindIO, err, "Failed to seek to ELF header.\n")
	}

	layout := LayoutFor(elf.Class(ident[elf.EI_CLASS]))
	if layout == nil {
		return nil, l.fail(KindFormat,
			fmt.Errorf("%w: class %d", ErrWrongClass, ident[elf.EI_CLASS]),
			"Invalid ELF machine class found. Found: %02x.\n", ident[elf.EI_CLASS])
	}

	return l.load(r, layout, cmdLine)
}

func (l *Loader) load(r io.ReadSeeker, layout *Layout, cmdLine string) (*Result, error) {
	l.state = StateStart

	hdr, warnings, err := l.readHeader(r, layout)
	if err != nil {
		return nil, err
	}
	l.state = StateHeaderValidated

	res := &Result{Header: hdr, Warnings: warnings}

	w := newWalker(r, layout, hdr)
	for w.Next() {
		ph := w.ProgramHeader()
		if !ph.Loadable() {
			res.Skipped++
			continue
		}

		if err := l.materialize(r, layout, ph); err != nil {
			return nil, err
		}
		res.Segments++
		res.LoadedBytes += ph.MemSize
		l.state = StateSegmentLoaded
	}
	if err := w.Err(); err != nil {
		return nil, l.fail(KindIO, err, "Failed to read program header %d.\n", w.Index())
	}

	l.console.Printf("Loaded %d bytes.\n", res.LoadedBytes)
	l.console.Printf("Kicking into entry point 0x%0*x.\n", layout.hexDigits, hdr.Entry)
	l.console.Debugf("hdr.entry = 0x%0*x\n", layout.hexDigits, hdr.Entry)
	l.console.Debugf("mem_sz = 0x%0*x\n", layout.hexDigits, res.LoadedBytes)

	entry := Entry{
		Address:     hdr.Entry,
		MemorySize:  l.platform.MemorySize(),
		CommandLine: cmdLine,
		Class:       hdr.Class,
		Machine:     hdr.Machine,
	}
	l.state = StateTransferred
	l.target.Transfer(entry)

	return res, nil
}

// fail prints the diagnostic line, moves to the aborted state and returns
// the typed error.
func (l *Loader) fail(kind Kind, err error, format string, args ...any) error {
	l.console.Printf(format, args...)
	if kind == KindIO || kind == KindMemory {
		l.console.Printf("%v. Aborting load.\n", err)
	}
	l.state = StateAborted
	return &Error{Kind: kind, Err: err}
}
