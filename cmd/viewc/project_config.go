package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"viewc/internal/buildpipeline"
	"viewc/internal/project"
)

// loadConfig finds viewc.toml above target. Without one the defaults
// apply and paths are relative to the target.
func loadConfig(target string) (project.Config, error) {
	start := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		start = filepath.Dir(target)
	}
	cfg, found, err := project.Discover(start)
	if err != nil {
		return cfg, fmt.Errorf("project: %w", err)
	}
	if !found {
		cfg = project.Default()
	}
	return cfg, nil
}

// targetArg is the first argument, or the project root, or ".".
func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if root, ok, err := project.FindRoot("."); err == nil && ok {
		return root
	}
	return "."
}

// compileRequest builds the request shared by check, build, watch and fix
// from the persistent flags.
func compileRequest(cmd *cobra.Command, target string) (*buildpipeline.CompileRequest, error) {
	cfg, err := loadConfig(target)
	if err != nil {
		return nil, err
	}
	pf := cmd.Root().PersistentFlags()
	jobs, err := pf.GetInt("jobs")
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	registries, err := pf.GetStringSlice("registry")
	if err != nil {
		return nil, fmt.Errorf("failed to get registry flag: %w", err)
	}
	req := &buildpipeline.CompileRequest{
		Target:         target,
		Config:         cfg,
		Registry:       registries,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if f := cmd.Flags().Lookup("no-cache"); f != nil {
		req.NoCache, _ = cmd.Flags().GetBool("no-cache")
	}
	if f := cmd.Flags().Lookup("until"); f != nil {
		req.Until, _ = cmd.Flags().GetString("until")
	}
	return req, nil
}
