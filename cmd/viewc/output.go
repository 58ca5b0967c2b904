package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"viewc/internal/diag"
	"viewc/internal/diagfmt"
	"viewc/internal/source"
	"viewc/internal/version"
)

// diagOutput holds the flags that shape diagnostic output.
type diagOutput struct {
	format    string
	color     bool
	pathMode  diagfmt.PathMode
	withNotes bool
	fixes     bool
	preview   bool
}

func addDiagFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "diagnostic format (pretty|short|json|sarif)")
	cmd.Flags().Bool("no-notes", false, "omit diagnostic notes")
	cmd.Flags().Bool("suggest", false, "show fix suggestions")
	cmd.Flags().Bool("preview", false, "show fix previews (implies --suggest)")
}

func readDiagOutput(cmd *cobra.Command, w *os.File) (diagOutput, error) {
	var out diagOutput
	var err error
	if out.format, err = cmd.Flags().GetString("format"); err != nil {
		return out, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch out.format {
	case "pretty", "short", "json", "sarif":
	default:
		return out, fmt.Errorf("unknown format: %s", out.format)
	}
	noNotes, err := cmd.Flags().GetBool("no-notes")
	if err != nil {
		return out, fmt.Errorf("failed to get no-notes flag: %w", err)
	}
	out.withNotes = !noNotes
	if out.fixes, err = cmd.Flags().GetBool("suggest"); err != nil {
		return out, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if out.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return out, fmt.Errorf("failed to get preview flag: %w", err)
	}
	out.fixes = out.fixes || out.preview

	pathFlag, err := cmd.Root().PersistentFlags().GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(pathFlag)
	if !ok {
		return out, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathFlag)
	}
	out.pathMode = mode
	out.color, err = useColor(cmd, w)
	return out, err
}

func useColor(cmd *cobra.Command, w *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(w), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}

// print writes items in the chosen format.
func (o diagOutput) print(w io.Writer, items []diag.Diagnostic, fs *source.FileSet) error {
	switch o.format {
	case "short":
		diagfmt.Short(w, items, fs, o.withNotes)
		return nil
	case "json":
		return diagfmt.JSONDiagnostics(w, items, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         o.pathMode,
			IncludeNotes:     o.withNotes,
			IncludeFixes:     o.fixes,
			IncludePreviews:  o.preview,
			IncludeKinds:     true,
		})
	case "sarif":
		return diagfmt.Sarif(w, items, fs, diagfmt.SarifRunMeta{
			ToolName:       "viewc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		diagfmt.PrettyDiagnostics(w, items, fs, diagfmt.PrettyOpts{
			Color:       o.color,
			Context:     1,
			PathMode:    o.pathMode,
			ShowNotes:   o.withNotes,
			ShowFixes:   o.fixes,
			ShowPreview: o.preview,
		})
		return nil
	}
}

// summaryLine is the closing "N errors, M warnings" line; empty when
// there is nothing to count.
func summaryLine(items []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return ""
	}
	return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "x") || strings.HasSuffix(word, "s") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
