package workflow

import "context"

// Step is the unit of work at a node. It receives the current state and
// returns the state to pass on. Returning nil keeps the input state,
// which suits steps that modify it in place.
type Step[S any] interface {
	Execute(ctx context.Context, s *S) (*S, error)
}

// StepFunc adapts a function to Step.
type StepFunc[S any] func(ctx context.Context, s *S) (*S, error)

func (f StepFunc[S]) Execute(ctx context.Context, s *S) (*S, error) {
	return f(ctx, s)
}

// Update wraps a function that mutates the state in place.
func Update[S any](fn func(ctx context.Context, s *S) error) Step[S] {
	return StepFunc[S](func(ctx context.Context, s *S) (*S, error) {
		if err := fn(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Decision inspects the state after a node ran and returns a route label.
type Decision[S any] func(s *S) string
