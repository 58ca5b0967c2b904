package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"viewc/internal/buildpipeline"
	"viewc/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.view|directory]",
	Short: "Apply the suggested fixes of the reported diagnostics",
	Long: `Fix checks the target and applies fixes attached to its diagnostics.
By default the first fix is applied; --all applies every machine-applicable
fix and --id a single named one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all machine-applicable fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply the fix with this identifier")
	fixCmd.Flags().Bool("dry-run", false, "print the fixed files instead of writing them")
}

func runFix(cmd *cobra.Command, args []string) error {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if targetID != "" && (applyAll || applyOnce) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, TargetID: targetID, DryRun: dryRun}
	switch {
	case targetID != "":
		opts.Mode = fix.ApplyModeID
	case applyAll:
		opts.Mode = fix.ApplyModeAll
	}

	req, err := compileRequest(cmd, targetArg(args))
	if err != nil {
		return err
	}
	// Fix edits are checked against the current text; never replay them.
	req.NoCache = true
	res, err := buildpipeline.Compile(cmd.Context(), req)
	if err != nil {
		return err
	}
	applied, applyErr := fix.Apply(res.Result.FileSet, res.Result.Diagnostics(), opts)
	return reportFixes(os.Stdout, applied, applyErr, dryRun)
}

func reportFixes(w io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}
	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(w, "%s %s:\n", verb, plural(len(res.Applied), "fix"))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(w, "  %s [%s] at %s (%s, %s)\n",
				item.Title, item.ID, location, plural(item.EditCount, "edit"), item.Applicability)
		}
	}
	if len(res.FileChanges) > 0 {
		if dryRun {
			for _, change := range res.FileChanges {
				fmt.Fprintf(w, "--- %s (%s)\n", change.Path, plural(change.EditCount, "edit"))
				if _, err := w.Write(change.Content); err != nil {
					return err
				}
				if n := len(change.Content); n > 0 && change.Content[n-1] != '\n' {
					fmt.Fprintln(w)
				}
			}
		} else {
			fmt.Fprintln(w, "Updated files:")
			for _, change := range res.FileChanges {
				fmt.Fprintf(w, "  %s (%s)\n", change.Path, plural(change.EditCount, "edit"))
			}
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}
	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
