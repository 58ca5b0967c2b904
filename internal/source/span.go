package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file of a FileSet.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// NoFile marks a span that points at no file: I/O and configuration
// problems that have no source location.
const NoFile FileID = ^FileID(0)

// Nowhere is the span of a diagnostic without a location.
var Nowhere = Span{File: NoFile}

// HasFile reports whether s points into a file.
func (s Span) HasFile() bool {
	return s.File != NoFile
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span holding both s and other.
// Spans from different files are not merged; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.File == other.File && s.Start < other.End && other.Start < s.End
}

// Narrow clamps sub into s. Lowering uses it to attach a more specific
// span to a generated fragment without ever widening the original.
func (s Span) Narrow(sub Span) Span {
	if sub.File != s.File {
		return s
	}
	if sub.Start < s.Start {
		sub.Start = s.Start
	}
	if sub.End > s.End {
		sub.End = s.End
	}
	if sub.Start > sub.End {
		return s
	}
	return sub
}

// Head returns the zero-width span at the start of s.
func (s Span) Head() Span {
	return Span{File: s.File, Start: s.Start, End: s.Start}
}

// Tail returns the zero-width span at the end of s.
func (s Span) Tail() Span {
	return Span{File: s.File, Start: s.End, End: s.End}
}

func (s Span) ShiftLeft(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start - n,
		End:   s.End - n,
	}
}

func (s Span) ShiftRight(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start + n,
		End:   s.End + n,
	}
}
