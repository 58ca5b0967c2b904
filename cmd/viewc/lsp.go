package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"viewc/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the view! language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before re-analyzing an edited document (0 = 200ms)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       debounce,
		MaxDiagnostics: maxDiagnostics,
		Log:            os.Stderr,
	})
	err = server.Run(cmd.Context())
	if errors.Is(err, lsp.ErrExit) {
		return nil
	}
	return err
}
