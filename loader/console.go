package loader

import (
	"fmt"
	"io"
)

// Console is the diagnostic sink. Lines written to it are for humans only.
type Console struct {
	w       io.Writer
	verbose bool
}

// NewConsole creates a Console writing to w. Debug lines are only written
// when verbose is set.
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{w: w, verbose: verbose}
}

// Printf writes a status or error line.
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.w, format, args...)
}

// Debugf writes a line only in verbose mode.
func (c *Console) Debugf(format string, args ...any) {
	if c.verbose {
		_, _ = fmt.Fprintf(c.w, format, args...)
	}
}
