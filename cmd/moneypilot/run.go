package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow>",
	Short: "Run a workflow and print its final state",
	Example: `  moneypilot run price_change --input '{"symbol":"ABC","from":100,"to":102.5}'
  moneypilot run analyst --input '{"symbol":"ABC"}' --events`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		raw, _ := cmd.Flags().GetString("input")
		input := map[string]any{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				return fmt.Errorf("invalid --input: %w", err)
			}
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		opts := []workflow.Option{workflow.WithTimeout(timeout)}

		showEvents, _ := cmd.Flags().GetBool("events")
		if !showEvents {
			out, err := a.workflows.Run(ctx, args[0], input, opts...)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), "json", out)
		}

		var last event.Event
		for ev := range a.workflows.RunStream(ctx, args[0], input, opts...) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%-16s %s\n", ev.Type, describeEvent(ev))
			last = ev
		}
		if last.Type == event.RunError {
			return last.Error
		}
		return encode(cmd.OutOrStdout(), "json", last.State)
	},
}

func describeEvent(ev event.Event) string {
	switch ev.Type {
	case event.StepStart, event.StepEnd:
		return ev.StepName
	case event.RouteSelected:
		return fmt.Sprintf("%s -%s-> %s", ev.StepName, ev.RouteName, ev.Target)
	case event.LoopIteration:
		return fmt.Sprintf("%s #%d", ev.StepName, ev.Iteration)
	case event.ToolCallStart:
		if ev.ToolCall != nil {
			return ev.ToolCall.Name
		}
	case event.RunError:
		if ev.Error != nil {
			return ev.Error.Error()
		}
	}
	return ev.RunID
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("input", "i", "", "Initial state as a JSON object")
	runCmd.Flags().Bool("events", false, "Print run events to stderr while running")
	runCmd.Flags().Duration("timeout", 0, "Abort the run after this duration (0 means no limit)")
}
