package diagfmt

import (
	"fmt"

	"viewc/internal/source"
)

// formatSpan renders span as "startLine:startCol-endLine:endCol", or as
// "span(start-end)" without a FileSet.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && span.HasFile() && int(span.File) < fs.Len() {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

// fileOf returns the file span points into, or nil for a span without a
// location.
func fileOf(fs *source.FileSet, span source.Span) *source.File {
	if fs == nil || !span.HasFile() || int(span.File) >= fs.Len() {
		return nil
	}
	return fs.Get(span.File)
}

func displayPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}
