package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/workflow"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		format, _ := cmd.Flags().GetString("output")
		return printTools(cmd.OutOrStdout(), format, a.tools.ListSchemas())
	},
}

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List registered workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		format, _ := cmd.Flags().GetString("output")
		return printWorkflows(cmd.OutOrStdout(), format, a.workflows.Describe())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd, workflowsCmd)
	toolsCmd.Flags().StringP("output", "o", "text", "Output format: text, json, or yaml")
	workflowsCmd.Flags().StringP("output", "o", "text", "Output format: text, json, or yaml")
}

func printTools(w io.Writer, format string, schemas []ai.ToolSchema) error {
	if format != "text" {
		return encode(w, format, schemas)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARAMETERS\tDESCRIPTION")
	for _, s := range schemas {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Name, len(s.Parameters), s.Description)
	}
	return tw.Flush()
}

func printWorkflows(w io.Writer, format string, descs []workflow.Description) error {
	if format != "text" {
		return encode(w, format, descs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENTRY\tNODES")
	for _, d := range descs {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", d.Name, d.Entry, len(d.Nodes))
	}
	return tw.Flush()
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (must be text, json, or yaml)", format)
	}
}
