package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGraph is the sentinel every GraphError unwraps to.
	ErrInvalidGraph = errors.New("workflow: invalid graph")

	// ErrCancelled indicates the run stopped because its context ended.
	ErrCancelled = errors.New("workflow: cancelled")

	// ErrWorkflowNotFound indicates no workflow is registered under a name.
	ErrWorkflowNotFound = errors.New("workflow: not found")

	// ErrWorkflowExists indicates a name is already registered.
	ErrWorkflowExists = errors.New("workflow: already registered")
)

// Issue is one structural problem found while compiling a graph.
type Issue struct {
	Node    string `json:"node,omitempty"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	if i.Node == "" {
		return i.Problem
	}
	return fmt.Sprintf("node %q: %s", i.Node, i.Problem)
}

// GraphError lists every structural problem of a graph. A graph with a
// GraphError never runs.
type GraphError struct {
	Workflow string
	Issues   []Issue
}

func (e *GraphError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("workflow %q: invalid graph: %s", e.Workflow, strings.Join(parts, "; "))
}

func (e *GraphError) Unwrap() error { return ErrInvalidGraph }

// StepError wraps an error returned by the step at Node.
type StepError struct {
	Workflow string
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow: step %q failed: %v", e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// RouteError reports a decision label with no matching route.
type RouteError struct {
	StepName string
	Label    string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("workflow: step %q routed to unknown label %q", e.StepName, e.Label)
}

// LoopLimitError reports a loop node entered more often than its bound.
type LoopLimitError struct {
	StepName string
	Limit    int
}

func (e *LoopLimitError) Error() string {
	return fmt.Sprintf("workflow: loop at %q exceeded %d iterations", e.StepName, e.Limit)
}
