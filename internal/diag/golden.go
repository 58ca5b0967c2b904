package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"viewc/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	EndLine  uint32
	EndCol   uint32
	Message  string
}

// FormatGoldenDiagnostics renders one line per diagnostic, sorted, with
// paths relative to the FileSet base and the full primary range:
//
//	error RES3001 page.view:2:4-2:10 unknown component `Buton`
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return formatDiagnostics(diags, fs, includeNotes, true)
}

// FormatShortDiagnostics is the CLI "short" format: start position only.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	return formatDiagnostics(diags, fs, includeNotes, false)
}

func formatDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes, withRange bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		return false
	})

	var b strings.Builder
	for i, d := range rendered {
		if withRange {
			fmt.Fprintf(&b, "%s %s %s:%d:%d-%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.EndLine, d.EndCol, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, fs *source.FileSet, includeNotes bool) []goldenDiagnostic {
	if loc, ok := resolveSpan(fs, d.Primary); ok {
		loc.Severity = severityLabel(d.Severity)
		loc.Code = d.Code.ID()
		loc.Message = sanitizeMessage(d.Message)
		out = append(out, loc)
	}
	if !includeNotes {
		return out
	}
	for _, note := range d.Notes {
		if loc, ok := resolveSpan(fs, note.Span); ok {
			loc.Severity = "note"
			loc.Code = d.Code.ID()
			loc.Message = sanitizeMessage(note.Msg)
			out = append(out, loc)
		}
	}
	return out
}

func resolveSpan(fs *source.FileSet, span source.Span) (goldenDiagnostic, bool) {
	if int(span.File) >= fs.Len() {
		return goldenDiagnostic{}, false
	}
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)
	return goldenDiagnostic{
		Path:    normalizePath(file.FormatPath("relative", fs.BaseDir())),
		Line:    start.Line,
		Column:  start.Col,
		EndLine: end.Line,
		EndCol:  end.Col,
	}, true
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
