package diagfmt

import (
	"encoding/json"
	"io"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// LocationJSON is a span in JSON output. File is empty for diagnostics
// without a location.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Kind     string       `json:"kind,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	f := fileOf(fs, span)
	if f == nil {
		return loc
	}
	loc.File = displayPath(fs, f, pathMode)
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput builds the JSON structure without encoding it.
func BuildDiagnosticsOutput(items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for i := range maxItems {
		d := &items[i]
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeKinds {
			dj.Kind = d.Code.Kind()
		}

		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			for _, fix := range orderedFixes(d.Fixes) {
				fj := FixJSON{
					ID:            fix.ID,
					Title:         fix.Title,
					Applicability: fix.Applicability.String(),
					IsPreferred:   fix.IsPreferred,
				}
				for _, edit := range fix.Edits {
					ej := FixEditJSON{
						Location: makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions),
						NewText:  edit.NewText,
						OldText:  edit.OldText,
					}
					if opts.IncludePreviews {
						if preview, err := buildFixEditPreview(fs, edit); err == nil {
							ej.BeforeLines = preview.before
							ej.AfterLines = preview.after
						}
					}
					fj.Edits = append(fj.Edits, ej)
				}
				dj.Fixes = append(dj.Fixes, fj)
			}
		}

		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes the diagnostics of bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	var items []diag.Diagnostic
	if bag != nil {
		items = bag.Items()
	}
	return JSONDiagnostics(w, items, fs, opts)
}

// JSONDiagnostics is JSON over a plain slice.
func JSONDiagnostics(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, fs, opts))
}
