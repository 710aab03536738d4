package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/moneypilot/moneypilot/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := version
		if v == "" {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			v = settings.Version
		}
		fmt.Fprintf(cmd.OutOrStdout(), "moneypilot %s (%s)\n", v, runtime.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
