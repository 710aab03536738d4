// Package event carries the progress notifications emitted while a
// workflow runs, a tool batch executes, or an assistant message is
// produced. Event types map one to one onto AG-UI protocol events.
package event

import (
	"context"
	"time"

	ai "github.com/moneypilot/moneypilot"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when a workflow run begins.
	RunStart Type = "run_start"

	// RunEnd fires when a run reaches End. State holds the final state.
	RunEnd Type = "run_end"

	// RunError fires when a run stops on an error or cancellation.
	RunError Type = "run_error"
)

// Step lifecycle events
const (
	StepStart Type = "step_start"
	StepEnd   Type = "step_end"
)

// Routing events
const (
	// RouteSelected fires after a conditional edge picks its target.
	RouteSelected Type = "route_selected"

	// LoopIteration fires each time a loop node is entered.
	LoopIteration Type = "loop_iteration"
)

// Message lifecycle events
const (
	MessageStart Type = "message_start"
	MessageDelta Type = "message_delta"
	MessageEnd   Type = "message_end"
)

// Tool call lifecycle events
const (
	// ToolCallStart fires before a tool executes. ToolCall carries the
	// name and raw arguments.
	ToolCallStart Type = "tool_call_start"

	// ToolCallResult fires with the outcome, including failures.
	ToolCallResult Type = "tool_call_result"
)

// Event is one observable occurrence during execution.
type Event struct {
	Type Type

	// RunID correlates every event of one workflow run or tool batch.
	RunID string

	// Workflow names the workflow being run.
	Workflow string

	// StepName identifies the node for step, route and loop events.
	StepName string

	// RouteName is the label a decision returned.
	RouteName string

	// Target is the node a route resolved to.
	Target string

	// Iteration counts loop entries, starting at 1.
	Iteration int

	MessageID string
	Delta     string
	Response  *ai.Response

	ToolCall   *ai.ToolCall
	ToolResult *ai.ToolResult

	// State is the exported final state on RunEnd.
	State map[string]any

	// Error is set on RunError events.
	Error error

	Timestamp time.Time
}

// Emit stamps e and sends it without blocking. A nil or full channel
// drops the event.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// Deliver stamps e and sends it, waiting for room until ctx is done.
// It reports whether the event was sent.
func Deliver(ctx context.Context, ch chan<- Event, e Event) bool {
	if ch == nil {
		return false
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
		return true
	default:
	}
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}

type ctxKey struct{}

// NewContext returns a context carrying ch, so that code running inside a
// step can report progress on the run's stream.
func NewContext(ctx context.Context, ch chan<- Event) context.Context {
	return context.WithValue(ctx, ctxKey{}, ch)
}

// FromContext returns the channel stored by NewContext, or nil.
func FromContext(ctx context.Context) chan<- Event {
	ch, _ := ctx.Value(ctxKey{}).(chan<- Event)
	return ch
}
