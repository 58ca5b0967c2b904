package main

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"viewc/internal/diag"
	"viewc/internal/diagfmt"
	"viewc/internal/host"
	"viewc/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file",
	Short: "Print the syntax tree of every view! invocation in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (pretty|json|tree)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "tree":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	fs, file, bag, err := sourceFile(cmd, args[0])
	if err != nil {
		return err
	}
	col := diag.NewCollector(bag)
	maxErrors, err := safecast.Conv[uint](bag.Cap())
	if err != nil {
		maxErrors = 0
	}

	for i, inv := range host.Extract(file, col) {
		res := parser.Parse(file, inv.Body, parser.Options{Reporter: col, MaxErrors: maxErrors})
		if res.View == nil {
			continue
		}
		if i > 0 && format != "json" {
			fmt.Fprintln(os.Stdout)
		}
		switch format {
		case "json":
			err = diagfmt.FormatViewJSON(os.Stdout, res.View)
		case "pretty":
			err = diagfmt.FormatViewPretty(os.Stdout, res.View, fs)
		default:
			err = diagfmt.FormatViewTree(os.Stdout, res.View, fs)
		}
		if err != nil {
			return err
		}
	}
	if err := reportToStderr(cmd, bag, fs); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errSilent
	}
	return nil
}
