package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"

	"viewc/internal/source"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// lineBounds returns the byte range of the zero-based line, without its
// newline.
func lineBounds(file *source.File, line int) (start, end uint32) {
	contentLen := safeUint32(len(file.Content))
	if line > len(file.LineIdx) {
		return contentLen, contentLen
	}
	if line > 0 {
		start = file.LineIdx[line-1] + 1
	}
	end = contentLen
	if line < len(file.LineIdx) {
		end = file.LineIdx[line]
	}
	if start > end {
		start = end
	}
	return start, end
}

// utf16Len is the number of UTF-16 code units r encodes to.
func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// offsetForPositionInFile converts an LSP position into a byte offset of
// file, clamping to the end of the line and of the file.
func offsetForPositionInFile(file *source.File, pos position) uint32 {
	if file == nil || pos.Line < 0 || pos.Character < 0 || len(file.Content) == 0 {
		return 0
	}
	off, end := lineBounds(file, pos.Line)
	units := 0
	for off < end && units < pos.Character {
		r, size := utf8.DecodeRune(file.Content[off:end])
		if units+utf16Len(r) > pos.Character {
			break
		}
		units += utf16Len(r)
		off += safeUint32(size)
	}
	return off
}

func positionForOffsetInFile(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	if n := safeUint32(len(file.Content)); offset > n {
		offset = n
	}
	line := sort.Search(len(file.LineIdx), func(i int) bool { return file.LineIdx[i] >= offset })
	off, _ := lineBounds(file, line)
	units := 0
	for off < offset {
		r, size := utf8.DecodeRune(file.Content[off:offset])
		units += utf16Len(r)
		off += safeUint32(size)
	}
	return position{Line: line, Character: units}
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	if file == nil {
		return lspRange{}
	}
	return lspRange{
		Start: positionForOffsetInFile(file, span.Start),
		End:   positionForOffsetInFile(file, span.End),
	}
}

// lineOf is the zero-based line holding offset.
func lineOf(file *source.File, offset uint32) int {
	return positionForOffsetInFile(file, offset).Line
}

// touches reports whether a cursor at off is on span; the position right
// after the last byte counts, as editors place the cursor there.
func touches(span source.Span, off uint32) bool {
	return span.End > span.Start && span.Start <= off && off <= span.End
}
