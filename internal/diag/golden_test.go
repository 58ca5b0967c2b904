package diag

import (
	"testing"

	"viewc/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	file := fs.Add("/workspace/views/page.view", []byte("<If>\n  <Then slot/>\n</If>\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     ResUnknownElement,
			Message:  "unknown element",
			Primary:  source.Span{File: file, Start: 8, End: 12},
		},
		{
			Severity: SevError,
			Code:     ResSlotMissing,
			Message:  "missing slot\n`then`",
			Primary:  source.Span{File: file, Start: 1, End: 3},
			Notes: []Note{
				{Span: source.Span{File: file, Start: 8, End: 12}, Msg: "declared here"},
			},
		},
	}

	want := "error RES3005 views/page.view:1:2-1:4 missing slot `then`\n" +
		"warning RES3012 views/page.view:2:4-2:8 unknown element\n" +
		"note RES3005 views/page.view:2:4-2:8 declared here"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != want {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}

	short := FormatShortDiagnostics(diags[:1], fs, false)
	if short != "warning RES3012 views/page.view:2:4 unknown element" {
		t.Fatalf("short = %q", short)
	}
}
