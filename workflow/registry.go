package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/state"
)

// Runner is a type-erased workflow. It lets workflows with different
// state types share a registry and be started with untyped input.
type Runner interface {
	Name() string
	Describe() Description

	// Run imports input into a fresh state, runs the workflow, and
	// exports the final state.
	Run(ctx context.Context, input map[string]any, opts ...Option) (map[string]any, error)

	// RunStream is Run reported through events. The channel closes after
	// RunEnd or RunError.
	RunStream(ctx context.Context, input map[string]any, opts ...Option) <-chan event.Event
}

type runner[S any] struct {
	w *Workflow[S]
}

// NewRunner exposes w as a Runner.
func NewRunner[S any](w *Workflow[S]) Runner {
	return &runner[S]{w: w}
}

func (r *runner[S]) Name() string { return r.w.Name() }

func (r *runner[S]) Describe() Description { return r.w.Describe() }

func (r *runner[S]) load(input map[string]any) (*S, error) {
	s := r.w.NewState()
	if err := state.ImportInto(s, input); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *runner[S]) Run(ctx context.Context, input map[string]any, opts ...Option) (map[string]any, error) {
	s, err := r.load(input)
	if err != nil {
		return nil, err
	}
	final, err := r.w.Run(ctx, s, opts...)
	if err != nil {
		return nil, err
	}
	return state.Export(final)
}

func (r *runner[S]) RunStream(ctx context.Context, input map[string]any, opts ...Option) <-chan event.Event {
	s, err := r.load(input)
	if err != nil {
		return failed(r.w.Name(), err)
	}
	return r.w.RunStream(ctx, s, opts...)
}

func failed(name string, err error) <-chan event.Event {
	ch := make(chan event.Event, 1)
	event.Emit(ch, event.Event{Type: event.RunError, Workflow: name, Error: err})
	close(ch)
	return ch
}

// Registry stores Runners by name.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
	logger  *slog.Logger
}

// NewRegistry creates an empty registry logging to logger, or to the
// default logger when nil.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		runners: make(map[string]Runner),
		logger:  logger,
	}
}

// Register adds runner. A name may be registered once.
func (r *Registry) Register(runner Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := runner.Name()
	if _, exists := r.runners[name]; exists {
		return fmt.Errorf("%w: %s", ErrWorkflowExists, name)
	}
	r.runners[name] = runner
	r.logger.Debug("workflow registered", "workflow", name)
	return nil
}

// Add builds def and registers the result.
func Add[S any](r *Registry, def Definition[S], opts ...Option) error {
	w, err := Build(def, opts...)
	if err != nil {
		return err
	}
	return r.Register(NewRunner(w))
}

// Get returns the runner registered under name.
func (r *Registry) Get(name string) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}
	return runner, nil
}

// Names returns all registered workflow names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered runners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runners)
}

// Describe returns every workflow's shape, sorted by name.
func (r *Registry) Describe() []Description {
	var out []Description
	for _, name := range r.Names() {
		if runner, err := r.Get(name); err == nil {
			out = append(out, runner.Describe())
		}
	}
	return out
}

// Run executes the named workflow.
func (r *Registry) Run(ctx context.Context, name string, input map[string]any, opts ...Option) (map[string]any, error) {
	runner, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	r.logger.Info("executing workflow", "workflow", name)
	out, err := runner.Run(ctx, input, opts...)
	if err != nil {
		r.logger.Error("workflow execution failed", "workflow", name, "error", err, "duration", time.Since(start))
		return nil, err
	}
	r.logger.Info("workflow executed", "workflow", name, "duration", time.Since(start))
	return out, nil
}

// RunStream executes the named workflow and returns its event stream. An
// unknown name yields a stream holding a single RunError.
func (r *Registry) RunStream(ctx context.Context, name string, input map[string]any, opts ...Option) <-chan event.Event {
	runner, err := r.Get(name)
	if err != nil {
		return failed(name, err)
	}
	return runner.RunStream(ctx, input, opts...)
}
