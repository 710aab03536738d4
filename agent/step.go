package agent

import (
	"context"

	"github.com/moneypilot/moneypilot/workflow"
)

// NewStep returns a workflow step that asks the agent a question built
// from the state and applies the answer to it.
func NewStep[S any](a *Agent, build func(ctx context.Context, s *S) (Query, error), apply func(ctx context.Context, s *S, res *Result) error) workflow.Step[S] {
	return workflow.Update(func(ctx context.Context, s *S) error {
		q, err := build(ctx, s)
		if err != nil {
			return err
		}
		res, err := a.Query(ctx, q)
		if err != nil {
			return err
		}
		return apply(ctx, s, res)
	})
}
