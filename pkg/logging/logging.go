package logging

import (
	"fmt"
	"io"
)

// ----------------------------------------------------------------------------
// Log sink

// This section defines the error sink shared by every parser and evaluator.
//
// Parsers receive a borrowed '*Log' and report failures through it in addition
// to their error return value; the return value alone drives control flow, the
// sink exists for observation (CLI output, tests). A nil '*Log' is a valid
// sink: every method is a no-op on it, so callers never have to guard.
type Log struct {
	out io.Writer // Destination for the formatted report lines (may be nil)

	lastMessage string // The most recent error message, kept for inspection
	lastOffset  int    // Byte offset attached to the most recent error (-1 if none)
	hasError    bool   // Whether any error has been reported at all
}

// Initializes and returns to the caller a brand new 'Log' struct.
// The argument io.Writer 'w' may be nil to collect errors without printing.
func New(w io.Writer) *Log {
	return &Log{out: w, lastOffset: -1}
}

// Records an error message without positional information.
func (l *Log) Error(msg string) {
	if l == nil {
		return
	}

	l.lastMessage, l.lastOffset, l.hasError = msg, -1, true
	if l.out != nil {
		fmt.Fprintf(l.out, "ERROR: %s\n", msg)
	}
}

// Records an error message tied to a byte offset inside the parsed source.
func (l *Log) ErrorAt(msg string, offset int) {
	if l == nil {
		return
	}

	l.lastMessage, l.lastOffset, l.hasError = msg, offset, true
	if l.out != nil {
		fmt.Fprintf(l.out, "ERROR: %s (at offset %d)\n", msg, offset)
	}
}

// Returns the most recent error message and whether one was ever recorded.
func (l *Log) LastError() (string, bool) {
	if l == nil {
		return "", false
	}
	return l.lastMessage, l.hasError
}

// Returns the byte offset of the most recent error, -1 when it had none.
func (l *Log) LastOffset() int {
	if l == nil {
		return -1
	}
	return l.lastOffset
}

// Clears the recorded error state (the output writer is untouched).
func (l *Log) Reset() {
	if l == nil {
		return
	}
	l.lastMessage, l.lastOffset, l.hasError = "", -1, false
}
