package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"viewc/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show viewc build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]string{
				"tool":       "viewc",
				"version":    version.Version,
				"git_commit": version.GitCommit,
				"build_date": version.BuildDate,
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			})
		case "pretty":
			on, err := useColor(cmd, os.Stdout)
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintln(os.Stdout, version.Colored())
			} else {
				fmt.Fprintln(os.Stdout, version.String())
			}
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
