package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"viewc/internal/version"
)

// errSilent makes the process exit with status 1 without printing
// anything; the diagnostics were already shown.
var errSilent = errors.New("")

var rootCmd = &cobra.Command{
	Use:   "viewc",
	Short: "Compiler for view! markup",
	Long: `viewc resolves view! markup against a component registry and lowers it
to span-carrying builder calls, reporting every diagnostic at the exact source range.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(*cobra.Command, []string) { finishRun() },
}

// main registers the subcommands and the persistent flags, then executes
// the root command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = project setting)")
	pf.Int("jobs", 0, "max parallel workers (0 = project setting, then GOMAXPROCS)")
	pf.StringSlice("registry", nil, "additional registry manifest (repeatable)")
	pf.String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|command|stage|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.String("cpuprofile", "", "write a CPU profile to file")
	pf.String("memprofile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a runtime execution trace to file")

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		finishRun()
		os.Exit(1)
	}
}

// cleanups run once, after the command or on its error path.
var cleanups []func()

func setupRun(cmd *cobra.Command, _ []string) error {
	cmd.SilenceErrors = true
	on, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !on
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopTrace)
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProf)
	return nil
}

func finishRun() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
