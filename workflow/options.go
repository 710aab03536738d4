package workflow

import (
	"log/slog"
	"time"

	"github.com/moneypilot/moneypilot/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/moneypilot/moneypilot/workflow"

// Observer receives run and step outcomes, typically to record metrics.
type Observer interface {
	StepCompleted(workflow, step string, d time.Duration, err error)
	RunCompleted(workflow string, status string, d time.Duration)
}

// Options contains configuration for workflow execution.
type Options struct {
	// Timeout sets a deadline for the entire run.
	Timeout time.Duration

	// RunID identifies the run in logs and events. Generated when empty.
	RunID string

	Logger   *slog.Logger
	Events   chan<- event.Event
	Observer Observer
	Tracer   trace.Tracer
}

// Option is a functional option for workflow configuration.
type Option func(*Options)

// WithTimeout sets the overall run timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithRunID fixes the run identifier.
func WithRunID(id string) Option {
	return func(o *Options) {
		o.RunID = id
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithEvents sends run progress to ch. Sends never block.
func WithEvents(ch chan<- event.Event) Option {
	return func(o *Options) {
		o.Events = ch
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Options) {
		o.Observer = obs
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = t
	}
}

// ApplyOptions layers opts over base and fills in defaults.
func ApplyOptions(base Options, opts ...Option) Options {
	o := base
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	return o
}
