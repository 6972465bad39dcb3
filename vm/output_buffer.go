package vm

import (
	"io"
	"strings"
)

// OutputBuffer is the append-only, host-visible I/O collaborator this
// engine's print/echo path writes through: it never interprets its
// contents, only appends to them and lets the host drain them. Grounded
// on an OutputBufferStack pattern, collapsed to the single-level buffer
// this engine's scope calls for (ob_start-style nesting is a
// builtin-catalogue concern, left to the native function registry
// rather than duplicated here).
type OutputBuffer struct {
	sink io.Writer
	buf  strings.Builder
}

// NewOutputBuffer wraps sink; every WriteString call both appends to an
// in-memory record (for ob_get_contents-style builtins) and forwards to
// sink so host-level streaming keeps working.
func NewOutputBuffer(sink io.Writer) *OutputBuffer {
	if sink == nil {
		sink = io.Discard
	}
	return &OutputBuffer{sink: sink}
}

// WriteString appends s, in program order, to both the retained buffer
// and the underlying sink.
func (o *OutputBuffer) WriteString(s string) (int, error) {
	o.buf.WriteString(s)
	return io.WriteString(o.sink, s)
}

// Contents returns everything written so far.
func (o *OutputBuffer) Contents() string { return o.buf.String() }

// Len reports the retained buffer's byte length.
func (o *OutputBuffer) Len() int { return o.buf.Len() }

// Reset clears the retained buffer (does not affect the sink).
func (o *OutputBuffer) Reset() { o.buf.Reset() }
