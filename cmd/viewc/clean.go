package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"viewc/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build outputs and the result cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("cache-only", false, "keep the build outputs")
}

func runClean(cmd *cobra.Command, args []string) error {
	cacheOnly, err := cmd.Flags().GetBool("cache-only")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(targetArg(args))
	if err != nil {
		return err
	}
	cache, err := driver.OpenCache(cfg.Abs(cfg.Cache.Dir))
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintln(os.Stdout, "cleared result cache")
	if cacheOnly || cfg.Root == "" {
		return nil
	}

	outDir := cfg.Abs(cfg.Output.Dir)
	info, err := os.Stat(outDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", outDir)
	}
	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", outDir, err)
	}
	fmt.Fprintf(os.Stdout, "removed %s\n", outDir)
	return nil
}
