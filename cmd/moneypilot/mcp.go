package main

import (
	"github.com/spf13/cobra"

	"github.com/moneypilot/moneypilot/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tool registry over MCP stdio",
	Long:  `Exposes every registered tool, including tools discovered from MCP_SERVERS, as an MCP server on stdin/stdout. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return mcp.ServeStdio(a.tools,
			mcp.WithName(a.settings.AppName),
			mcp.WithVersion(a.settings.Version),
		)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
