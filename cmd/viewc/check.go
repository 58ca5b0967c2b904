package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"viewc/internal/buildpipeline"
	"viewc/internal/diag"
	"viewc/internal/driver"
	"viewc/internal/observ"
	"viewc/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.view|directory|-]",
	Short: "Report diagnostics for view files",
	Long: `Check parses, resolves and type-checks every view! invocation under the target
and prints the diagnostics. With "-" the source is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addDiagFlags(checkCmd)
	checkCmd.Flags().Bool("no-cache", false, "ignore the result cache")
	checkCmd.Flags().String("until", "", "stop after a stage ("+strings.Join(driver.Stages, "|")+")")
	checkCmd.Flags().String("ui", "off", "progress UI (auto|on|off)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "exit with status 1 on warnings")
	checkCmd.Flags().String("stdin-name", "stdin.view", "file name reported for stdin input")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out, err := readDiagOutput(cmd, os.Stdout)
	if err != nil {
		return err
	}
	until, err := cmd.Flags().GetString("until")
	if err != nil {
		return err
	}
	if until != "" && !slices.Contains(driver.Stages, until) {
		return fmt.Errorf("unknown stage %q (expected %s)", until, strings.Join(driver.Stages, ", "))
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	var (
		items   []diag.Diagnostic
		fs      *source.FileSet
		timings buildpipeline.Timings
	)
	if len(args) == 1 && args[0] == "-" {
		items, fs, err = checkStdin(cmd, until, timer)
		if err != nil {
			return err
		}
	} else {
		req, err := compileRequest(cmd, targetArg(args))
		if err != nil {
			return err
		}
		req.Timer = timer
		uiFlag, _ := cmd.Flags().GetString("ui")
		mode, err := readUIMode(uiFlag)
		if err != nil {
			return err
		}
		var res buildpipeline.CompileResult
		if shouldUseTUI(mode, quiet) {
			res, err = runCompileWithUI(cmd.Context(), "check", req)
		} else {
			res, err = buildpipeline.Compile(cmd.Context(), req)
		}
		if err != nil {
			return err
		}
		items, fs, timings = res.Result.Diagnostics(), res.Result.FileSet, res.Timings
	}

	if err := out.print(os.Stdout, items, fs); err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	if !quiet && out.format == "pretty" {
		if line := summaryLine(items); line != "" {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	if showTimings {
		printStageTimings(os.Stderr, timings, timer)
	}
	return exitStatus(items, warningsAsErrors)
}

func checkStdin(cmd *cobra.Command, until string, timer *observ.Timer) ([]diag.Diagnostic, *source.FileSet, error) {
	name, err := cmd.Flags().GetString("stdin-name")
	if err != nil {
		return nil, nil, err
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, nil, fmt.Errorf("read stdin: %w", err)
	}
	req, err := compileRequest(cmd, ".")
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	reg, regBag := driver.LoadRegistry(fileSet, append(req.Config.RegistryPaths(), req.Registry...))
	file := fileSet.Get(fileSet.AddVirtual(name, src))
	maxDiagnostics := req.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = req.Config.Project.MaxDiagnostics
	}
	u := driver.CompileFile(cmd.Context(), file, reg, driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Until:          until,
		Timer:          timer,
	})
	items := append(regBag.Items(), u.Bag.Items()...)
	return items, fileSet, nil
}

// exitStatus maps the diagnostics to the process status.
func exitStatus(items []diag.Diagnostic, warningsAsErrors bool) error {
	for _, d := range items {
		if d.Severity == diag.SevError || (warningsAsErrors && d.Severity == diag.SevWarning) {
			return errSilent
		}
	}
	return nil
}
