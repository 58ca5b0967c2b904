package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"viewc/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [flags] [directory]",
	Short: "Create a viewc.toml and a starter registry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		path, err := project.Init(dir, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "created %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "project name (default: directory name)")
}
