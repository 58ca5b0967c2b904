package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"viewc/internal/diag"
	"viewc/internal/diagfmt"
	"viewc/internal/host"
	"viewc/internal/lexer"
	"viewc/internal/source"
	"viewc/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file",
	Short: "Print the tokens of every view! invocation in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// sourceFile loads path into a fresh file set together with a bag sized by
// --max-diagnostics.
func sourceFile(cmd *cobra.Command, path string) (*source.FileSet, *source.File, *diag.Bag, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	return fs, fs.Get(id), diag.NewBag(maxDiagnostics), nil
}

// reportToStderr prints the bag in pretty form when it holds anything.
func reportToStderr(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag.Len() == 0 {
		return nil
	}
	color, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	bag.Sort()
	diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{Color: color, Context: 2, ShowNotes: true})
	return nil
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	fs, file, bag, err := sourceFile(cmd, args[0])
	if err != nil {
		return err
	}
	col := diag.NewCollector(bag)

	var toks []token.Token
	for _, inv := range host.Extract(file, col) {
		toks = append(toks, lexer.Tokenize(file, lexer.Options{Reporter: col, Range: inv.Body})...)
	}
	if err := reportToStderr(cmd, bag, fs); err != nil {
		return err
	}
	if format == "json" {
		return diagfmt.FormatTokensJSON(os.Stdout, toks)
	}
	return diagfmt.FormatTokensPretty(os.Stdout, toks, fs)
}
