package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/event"
)

// previewLength bounds result previews written to the log.
const previewLength = 200

// Observer receives the outcome of every executed call.
type Observer interface {
	ToolExecuted(name string, d time.Duration, err error)
}

// Executor runs the tool calls a model requested against a registry.
type Executor struct {
	registry *Registry
	logger   *slog.Logger
	observer Observer
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor creates an executor over registry.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Batch is the outcome of one ExecuteCalls invocation.
type Batch struct {
	ID        string
	Results   []ai.ToolResult
	Succeeded int
	Failed    int
}

// Messages returns the results as tool messages for the follow-up request.
func (b *Batch) Messages() []ai.Message {
	out := make([]ai.Message, len(b.Results))
	for i, r := range b.Results {
		out[i] = ai.NewToolResultMessage(r)
	}
	return out
}

// ExecuteCalls runs calls one after another in the order given. A failing
// call yields an error result and the batch continues. Events, when ch is
// non-nil, report each call's start and result.
func (e *Executor) ExecuteCalls(ctx context.Context, calls []ai.ToolCall, ch chan<- event.Event) *Batch {
	b := &Batch{ID: ai.NewRequestID(ai.RequestPrefixTool)}
	if len(calls) == 0 {
		e.logger.Debug("no tool calls to process")
		return b
	}
	log := e.logger.With("execution_id", b.ID)
	log.Info("starting tool execution batch", "tool_call_count", len(calls))

	for i, call := range calls {
		call := call
		event.Emit(ch, event.Event{Type: event.ToolCallStart, RunID: b.ID, ToolCall: &call})
		log.Debug("executing tool call",
			"call_index", i,
			"tool_call_id", call.ID,
			"function_name", call.Name,
			"arguments", call.Arguments,
		)

		start := time.Now()
		content, err := e.execute(ctx, call)
		if e.observer != nil {
			e.observer.ToolExecuted(call.Name, time.Since(start), err)
		}

		res := ai.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: content}
		if err != nil {
			b.Failed++
			res.IsError = true
			res.Content = errorContent(call.Name, err)
			log.Error("tool call failed",
				"call_index", i,
				"tool_call_id", call.ID,
				"function_name", call.Name,
				"error", err,
				"error_type", ErrorType(err),
			)
		} else {
			b.Succeeded++
			log.Info("tool call executed successfully",
				"call_index", i,
				"tool_call_id", call.ID,
				"function_name", call.Name,
				"result_preview", preview(content),
			)
		}
		b.Results = append(b.Results, res)
		event.Emit(ch, event.Event{Type: event.ToolCallResult, RunID: b.ID, ToolCall: &call, ToolResult: &res})
	}

	log.Info("tool execution batch completed",
		"total_calls", len(calls),
		"successful_calls", b.Succeeded,
		"failed_calls", b.Failed,
		"success_rate", float64(b.Succeeded)/float64(len(calls)),
	)
	return b
}

func (e *Executor) execute(ctx context.Context, call ai.ToolCall) (string, error) {
	args := map[string]any{}
	if call.Arguments != "" {
		var raw any
		if err := json.Unmarshal([]byte(call.Arguments), &raw); err != nil {
			return "", &ArgumentsError{Tool: call.Name, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return "", &ArgumentsError{Tool: call.Name, Err: fmt.Errorf("arguments must be an object, got %T", raw)}
		}
		args = obj
	}

	result, err := e.registry.Execute(ctx, call.Name, args)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(result)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprint(result))
	}
	return string(data), nil
}

// ErrorType classifies a tool failure for the error payload returned to
// the model.
func ErrorType(err error) string {
	var (
		notFound *ErrToolNotFound
		param    *ParamError
		args     *ArgumentsError
		exec     *ErrToolExecution
	)
	switch {
	case errors.As(err, &notFound):
		return "tool_not_found"
	case errors.As(err, &param):
		return "invalid_parameter"
	case errors.As(err, &args):
		return "invalid_arguments"
	case errors.As(err, &exec):
		return "execution_failed"
	}
	return "error"
}

func errorContent(name string, err error) string {
	data, _ := json.Marshal(map[string]string{
		"error":      err.Error(),
		"error_type": ErrorType(err),
		"tool_name":  name,
	})
	return string(data)
}

// preview cuts s to at most previewLength bytes on a rune boundary.
func preview(s string) string {
	if len(s) <= previewLength {
		return s
	}
	n := previewLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
