package loader

import (
	"errors"
	"fmt"
)

// Kind classifies why a load attempt was aborted.
type Kind int

const (
	// KindFormat means the identification bytes were rejected.
	KindFormat Kind = iota
	// KindEmptyImage means the image declares no program headers.
	KindEmptyImage
	// KindIO means a seek or read on the image failed or came up short.
	KindIO
	// KindMemory means the memory sink refused a write.
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format error"
	case KindEmptyImage:
		return "empty image"
	case KindIO:
		return "I/O error"
	case KindMemory:
		return "memory error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel causes carried by format and empty-image errors.
var (
	ErrBadMagic      = errors.New("bad ELF magic")
	ErrWrongClass    = errors.New("wrong ELF class")
	ErrWrongEncoding = errors.New("not a big-endian image")
	ErrNoSegments    = errors.New("zero program headers")
)

// Error is returned when a load attempt is aborted. Nothing is transferred
// after an Error; format and empty-image errors are raised before any
// memory write.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a load Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}

// StructuralWarning records a header field with an unexpected value that
// does not stop the load.
type StructuralWarning struct {
	Field    string
	Expected uint64
	Found    uint64
}

func (w StructuralWarning) String() string {
	return fmt.Sprintf("unexpected %s: expected %d, found %d",
		w.Field, w.Expected, w.Found)
}
