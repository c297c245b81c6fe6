// Package cliutil implements the I/O plumbing shared by both harness
// binaries: stream wiring for cobra commands and password/passphrase
// prompting, adapted from the teacher's genericclioptions/input split.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// FdReader is a file-like input source: readable, with a descriptor a
// terminal library can query for raw mode.
type FdReader interface {
	Fd() uintptr
	Stat() (os.FileInfo, error)

	io.Reader
}

// IOStreams bundles a command's input/output/error streams.
type IOStreams struct {
	In     FdReader
	Out    io.Writer
	ErrOut io.Writer

	Verbose bool
}

// NewDefaultIOStreams wires IOStreams to the process's real stdio.
func NewDefaultIOStreams() *IOStreams {
	return &IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

// Debugf writes to ErrOut only when Verbose is set.
func (s IOStreams) Debugf(format string, args ...any) {
	if s.Verbose {
		fmt.Fprintf(s.ErrOut, format, args...)
	}
}

// Infof writes a user-facing message to Out.
func (s IOStreams) Infof(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}
