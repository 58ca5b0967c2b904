package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"viewc/internal/diag"
	"viewc/internal/source"
)

// Short writes one line per diagnostic, `severity CODE path:line:col msg`.
// Diagnostics without a location are written with their code only.
func Short(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, includeNotes bool) {
	var located []diag.Diagnostic
	for i := range items {
		if fileOf(fs, items[i].Primary) == nil {
			fmt.Fprintf(w, "%s %s %s\n", strings.ToLower(items[i].Severity.String()), items[i].Code.ID(), items[i].Message)
			continue
		}
		located = append(located, items[i])
	}
	if out := diag.FormatShortDiagnostics(located, fs, includeNotes); out != "" {
		fmt.Fprintln(w, out)
	}
}

func normalizeURI(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
