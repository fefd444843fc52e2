// Package source describes byte-offset ranges into a single method body's
// bytecode stream. Unlike a multi-file compiler frontend, the core never
// needs a FileSet: every Span is relative to the MethodBody it was produced
// for, and diagnostics identify the offending method separately.
package source

import "fmt"

// Span is a half-open byte-offset range [Start, End) into one method's
// bytecode stream.
type Span struct {
	Start uint32
	End   uint32
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether offset lies within the span.
func (s Span) Contains(offset uint32) bool {
	return offset >= s.Start && offset < s.End
}

// At returns a zero-length span at offset, useful for pointing a
// diagnostic at a single bytecode instruction.
func At(offset uint32) Span {
	return Span{Start: offset, End: offset}
}
