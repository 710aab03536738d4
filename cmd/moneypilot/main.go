// Command moneypilot serves and runs MoneyPilot workflows and tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "moneypilot",
	Short: "MoneyPilot runs graph workflows and LLM tools for personal finance",
	Long: `MoneyPilot hosts a registry of tools and graph workflows. It serves them over
an HTTP API with AG-UI streaming, exposes the tools over MCP, and runs
workflows from the command line.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
