package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"viewc/internal/buildpipeline"
	"viewc/internal/observ"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.view|directory]",
	Short: "Compile view files and write the lowered output",
	Long: `Build checks the target like ` + "`viewc check`" + ` and then writes one output file
per source file under the output directory. Outputs are not written while
errors are reported unless --keep-going is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	addDiagFlags(buildCmd)
	buildCmd.Flags().String("emit", "", "output format (text|json|msgpack); default from viewc.toml")
	buildCmd.Flags().StringP("out", "o", "", "output directory; default from viewc.toml")
	buildCmd.Flags().Bool("keep-going", false, "write outputs even when errors are reported")
	buildCmd.Flags().Bool("no-cache", false, "ignore the result cache")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	out, err := readDiagOutput(cmd, os.Stderr)
	if err != nil {
		return err
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	keepGoing, err := cmd.Flags().GetBool("keep-going")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	creq, err := compileRequest(cmd, targetArg(args))
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
		creq.Timer = timer
	}
	req := &buildpipeline.BuildRequest{
		CompileRequest:        *creq,
		OutputDir:             outDir,
		Format:                emit,
		AllowDiagnosticsError: keepGoing,
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(mode, quiet) {
		res, err = runBuildWithUI(cmd.Context(), "build", req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if res.Result != nil {
		items := res.Result.Diagnostics()
		if perr := out.print(os.Stderr, items, res.Result.FileSet); perr != nil {
			return fmt.Errorf("failed to format diagnostics: %w", perr)
		}
		if !quiet && out.format == "pretty" {
			if line := summaryLine(items); line != "" {
				fmt.Fprintln(os.Stderr, line)
			}
		}
	}
	if errors.Is(err, buildpipeline.ErrDiagnostics) {
		return errSilent
	}
	if err != nil {
		return err
	}

	if !quiet {
		wd, _ := os.Getwd()
		for _, path := range res.Outputs {
			if rel, rerr := filepath.Rel(wd, path); rerr == nil {
				path = rel
			}
			fmt.Fprintf(os.Stdout, "wrote %s\n", filepath.ToSlash(path))
		}
	}
	if showTimings {
		printStageTimings(os.Stderr, res.Timings, timer)
	}
	if res.Result != nil && res.Result.HasErrors() {
		return errSilent
	}
	return nil
}
