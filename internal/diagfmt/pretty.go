package diagfmt

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// Pretty writes the diagnostics of bag (sorted beforehand) in a
// human-readable form. Each one is printed as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the primary span underlined `^~~~`,
// then the notes and fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	PrettyDiagnostics(w, bag.Items(), fs, opts)
}

// PrettyDiagnostics is Pretty over a plain slice.
func PrettyDiagnostics(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := &prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.diagnostic(&items[i])
	}
}

type palette struct {
	err, warn, info *color.Color
	note, fix       *color.Color
	gutter, caret   *color.Color
	bold            *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		fix:    mk(color.FgGreen),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) location(span source.Span) (string, bool) {
	f := fileOf(p.fs, span)
	if f == nil {
		return "", false
	}
	lc := f.LineCol(span.Start)
	return fmt.Sprintf("%s:%d:%d", displayPath(p.fs, f, p.opts.PathMode), lc.Line, lc.Col), true
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	head := p.pal.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID())
	if loc, ok := p.location(d.Primary); ok {
		fmt.Fprintf(p.w, "%s: %s: %s\n", p.pal.bold.Sprint(loc), head, d.Message)
		p.snippet(d.Primary, p.pal.caret)
	} else {
		fmt.Fprintf(p.w, "%s: %s\n", head, d.Message)
	}

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			if loc, ok := p.location(n.Span); ok {
				fmt.Fprintf(p.w, "  %s %s: %s\n", p.pal.note.Sprint("note:"), loc, n.Msg)
			} else {
				fmt.Fprintf(p.w, "  %s %s\n", p.pal.note.Sprint("note:"), n.Msg)
			}
		}
	}
	if p.opts.ShowFixes {
		for i, fix := range orderedFixes(d.Fixes) {
			p.fix(i+1, &fix)
		}
	}
}

// snippet prints the lines around span with the span underlined. Only the
// first line of a multi-line span is underlined.
func (p *prettyPrinter) snippet(span source.Span, caret *color.Color) {
	f := fileOf(p.fs, span)
	if f == nil {
		return
	}
	start, end := p.fs.Resolve(span)
	ctx := uint32(max(p.opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln > start.Line && text == "" && ln > uint32(len(f.LineIdx)) {
			break
		}
		fmt.Fprintf(p.w, "%s %s\n", p.pal.gutter.Sprintf("%*d |", gutterWidth, ln), p.clip(text))
		if ln != start.Line {
			continue
		}
		endCol := end.Col
		if end.Line != start.Line {
			endCol = uint32(len(text)) + 1
		}
		pad, width := caretGeometry(text, start.Col, endCol)
		mark := "^" + strings.Repeat("~", max(width-1, 0))
		fmt.Fprintf(p.w, "%s %s%s\n", p.pal.gutter.Sprintf("%*s |", gutterWidth, ""), pad, caret.Sprint(mark))
	}
}

func (p *prettyPrinter) clip(line string) string {
	if p.opts.Width == 0 {
		return line
	}
	return runewidth.Truncate(line, int(p.opts.Width), "…")
}

// caretGeometry returns the padding that lines up with column startCol of
// line (keeping tabs, widening wide runes) and the display width of the
// range up to endCol, at least 1.
func caretGeometry(line string, startCol, endCol uint32) (string, int) {
	s := clampCol(line, startCol)
	e := max(clampCol(line, endCol), s)
	var pad strings.Builder
	for _, r := range line[:s] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return pad.String(), max(runewidth.StringWidth(line[s:e]), 1)
}

func clampCol(line string, col uint32) int {
	if col == 0 {
		return 0
	}
	return min(int(col-1), len(line))
}

func (p *prettyPrinter) fix(n int, fix *diag.Fix) {
	label := fmt.Sprintf("fix #%d: %s [%s]", n, fix.Title, fix.Applicability)
	if fix.ID != "" {
		label += " id=" + fix.ID
	}
	if fix.IsPreferred {
		label += " (preferred)"
	}
	fmt.Fprintf(p.w, "  %s\n", p.pal.fix.Sprint(label))
	for _, edit := range fix.Edits {
		loc, ok := p.location(edit.Span)
		if !ok {
			loc = "<unknown>"
		}
		fmt.Fprintf(p.w, "      %s apply=%q\n", loc, edit.NewText)
		if !p.opts.ShowPreview {
			continue
		}
		preview, err := buildFixEditPreview(p.fs, edit)
		if err != nil {
			continue
		}
		fmt.Fprintln(p.w, "      preview:")
		for _, line := range preview.before {
			fmt.Fprintf(p.w, "        %s\n", p.pal.err.Sprint("- "+line))
		}
		for _, line := range preview.after {
			fmt.Fprintf(p.w, "        %s\n", p.pal.fix.Sprint("+ "+line))
		}
	}
}

// orderedFixes puts preferred and more trustworthy fixes first.
func orderedFixes(fixes []diag.Fix) []diag.Fix {
	out := append([]diag.Fix(nil), fixes...)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj := out[i], out[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
	return out
}
