package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/state"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Workflow is a validated graph ready to run. It is immutable and safe
// for concurrent runs as long as its steps are.
type Workflow[S any] struct {
	name     string
	entry    string
	nodes    map[string]Step[S]
	order    []string
	next     map[string]string
	branches map[string]branch[S]
	loops    map[string]int
	opts     Options
	newState func() *S
}

// Name returns the workflow name.
func (w *Workflow[S]) Name() string { return w.name }

// Entry returns the first node a run executes.
func (w *Workflow[S]) Entry() string { return w.entry }

// Nodes lists node names in the order they were added.
func (w *Workflow[S]) Nodes() []string {
	return append([]string(nil), w.order...)
}

// NewState returns a fresh starting state.
func (w *Workflow[S]) NewState() *S {
	if w.newState != nil {
		if s := w.newState(); s != nil {
			return s
		}
	}
	return new(S)
}

type run[S any] struct {
	w      *Workflow[S]
	opts   Options
	id     string
	start  time.Time
	visits map[string]int
	steps  int

	// caller is the context Run was given, before any run timeout.
	caller context.Context
}

// Run executes the workflow from its entry node until a node routes to
// End. Exactly one node runs at a time. Cancellation of ctx is checked
// before every node; a node already running is allowed to finish.
//
// On failure Run returns the state as it stood when the run stopped
// together with one of *StepError, *RouteError, *LoopLimitError, or an
// error wrapping ErrCancelled.
func (w *Workflow[S]) Run(ctx context.Context, s *S, opts ...Option) (*S, error) {
	r := &run[S]{
		w:      w,
		opts:   ApplyOptions(w.opts, opts...),
		start:  time.Now(),
		visits: make(map[string]int),
		caller: ctx,
	}
	r.id = r.opts.RunID
	if r.id == "" {
		r.id = uuid.NewString()
	}
	if s == nil {
		s = w.NewState()
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	ctx, span := r.opts.Tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("workflow.name", w.name),
		attribute.String("workflow.run_id", r.id),
	))
	defer span.End()
	if r.opts.Events != nil {
		ctx = event.NewContext(ctx, r.opts.Events)
	}

	log := r.opts.Logger.With("workflow", w.name, "run_id", r.id)

	if meta := state.MetaOf(s); meta != nil {
		if meta.WorkflowID == "" {
			meta.WorkflowID = r.id
		}
		if meta.Timestamp.IsZero() {
			meta.Timestamp = time.Now().UTC()
		}
		meta.Status = state.StatusRunning
		meta.Error = ""
	}

	log.Info("workflow started", "entry", w.entry)
	r.emit(event.Event{Type: event.RunStart})

	current := w.entry
	for current != End {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, span, s, state.StatusCancelled,
				fmt.Errorf("%w before step %q: %w", ErrCancelled, current, err))
		}

		r.visits[current]++
		if limit, ok := w.loops[current]; ok {
			if r.visits[current] > limit {
				return r.fail(ctx, span, s, state.StatusFailed,
					&LoopLimitError{StepName: current, Limit: limit})
			}
			r.emit(event.Event{Type: event.LoopIteration, StepName: current, Iteration: r.visits[current]})
		}

		next, err := r.execute(ctx, current, s)
		if err != nil {
			return r.fail(ctx, span, s, state.StatusFailed,
				&StepError{Workflow: w.name, StepName: current, Err: err})
		}
		if next != nil {
			s = next
		}

		target, err := r.route(current, s)
		if err != nil {
			return r.fail(ctx, span, s, state.StatusFailed, err)
		}
		current = target
	}

	if meta := state.MetaOf(s); meta != nil {
		meta.Status = state.StatusCompleted
	}
	d := time.Since(r.start)
	span.SetAttributes(attribute.Int("workflow.steps", r.steps))
	span.SetStatus(codes.Ok, "")
	if r.opts.Observer != nil {
		r.opts.Observer.RunCompleted(w.name, string(state.StatusCompleted), d)
	}

	ev := event.Event{Type: event.RunEnd}
	if r.opts.Events != nil {
		if m, err := state.Export(s); err == nil {
			ev.State = m
		} else {
			log.Warn("final state not exportable", "error", err)
		}
	}
	r.emitTerminal(ev)
	log.Info("workflow completed", "steps", r.steps, "duration", d)
	return s, nil
}

// execute runs one node inside its own span. A panicking step is
// reported as that step's error.
func (r *run[S]) execute(ctx context.Context, name string, s *S) (out *S, err error) {
	ctx, span := r.opts.Tracer.Start(ctx, "workflow.step", trace.WithAttributes(
		attribute.String("workflow.name", r.w.name),
		attribute.String("workflow.step", name),
	))
	defer span.End()

	r.emit(event.Event{Type: event.StepStart, StepName: name})
	r.opts.Logger.Debug("step started", "workflow", r.w.name, "run_id", r.id, "step", name)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("panic: %v", p)
		}
		d := time.Since(start)
		if r.opts.Observer != nil {
			r.opts.Observer.StepCompleted(r.w.name, name, d, err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		r.steps++
		r.emit(event.Event{Type: event.StepEnd, StepName: name})
		r.opts.Logger.Debug("step finished", "workflow", r.w.name, "run_id", r.id, "step", name, "duration", d)
	}()

	return r.w.nodes[name].Execute(ctx, s)
}

func (r *run[S]) route(from string, s *S) (string, error) {
	if to, ok := r.w.next[from]; ok {
		return to, nil
	}
	b := r.w.branches[from]
	label, err := decide(b, s)
	if err != nil {
		return "", &StepError{Workflow: r.w.name, StepName: from, Err: err}
	}
	to, ok := b.routes[label]
	if !ok {
		return "", &RouteError{StepName: from, Label: label}
	}
	r.emit(event.Event{Type: event.RouteSelected, StepName: from, RouteName: label, Target: to})
	r.opts.Logger.Debug("route selected", "workflow", r.w.name, "run_id", r.id, "step", from, "route", label, "target", to)
	return to, nil
}

func decide[S any](b branch[S], s *S) (label string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("route decision panic: %v", p)
		}
	}()
	return b.decide(s), nil
}

func (r *run[S]) fail(ctx context.Context, span trace.Span, s *S, status state.Status, err error) (*S, error) {
	if meta := state.MetaOf(s); meta != nil {
		meta.Status = status
		meta.Error = err.Error()
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if r.opts.Observer != nil {
		r.opts.Observer.RunCompleted(r.w.name, string(status), time.Since(r.start))
	}
	r.emitTerminal(event.Event{Type: event.RunError, Error: err})
	r.opts.Logger.ErrorContext(ctx, "workflow failed",
		"workflow", r.w.name,
		"run_id", r.id,
		"status", status,
		"error", err,
	)
	return s, err
}

func (r *run[S]) emit(e event.Event) {
	e.RunID = r.id
	e.Workflow = r.w.name
	event.Emit(r.opts.Events, e)
}

// emitTerminal sends RunEnd or RunError, waiting for a slow reader
// until the caller gives up.
func (r *run[S]) emitTerminal(e event.Event) {
	e.RunID = r.id
	e.Workflow = r.w.name
	if r.opts.Events != nil && !event.Deliver(r.caller, r.opts.Events, e) {
		r.opts.Logger.Warn("terminal event not delivered", "workflow", r.w.name, "run_id", r.id, "type", e.Type)
	}
}

// RunStream runs the workflow in a goroutine and returns its events. The
// channel closes after RunEnd or RunError.
func (w *Workflow[S]) RunStream(ctx context.Context, s *S, opts ...Option) <-chan event.Event {
	ch := event.NewChannel()
	go func() {
		defer close(ch)
		_, _ = w.Run(ctx, s, append(opts, WithEvents(ch))...)
	}()
	return ch
}
