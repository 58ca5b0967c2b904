package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"viewc/internal/prof"
)

// setupProfiling starts the profiles named by the persistent flags. The
// cleanup stops them and writes the heap profile.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	cpuProfile, err := root.PersistentFlags().GetString("cpuprofile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("memprofile")
	if err != nil {
		return nil, fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if cpuProfile == "" && memProfile == "" && tracePath == "" {
		return func() {}, nil
	}

	session, err := prof.Start(prof.Options{CPU: cpuProfile, Mem: memProfile, Trace: tracePath})
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
