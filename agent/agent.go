package agent

import (
	"context"
	"log/slog"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/chat"
	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/tool"
)

// DefaultMaxToolRounds is how many times the model may call tools before
// its answer is taken as final.
const DefaultMaxToolRounds = 1

// Query is one request to the model.
type Query struct {
	Messages []ai.Message
	// JSON asks for a JSON answer and parses it into Result.Data.
	JSON bool
	// Tools names registry tools to offer the model.
	Tools []string
	// MaxTokens defaults to ai.DefaultMaxTokens when zero.
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	// Model overrides the client's default.
	Model string
	// Events receives message and tool call events. When nil, the channel
	// carried by ctx (see event.NewContext) is used.
	Events chan<- event.Event
}

// Result is the model's final answer.
type Result struct {
	RequestID string
	Content   string
	// Data holds the parsed answer in JSON mode.
	Data         any
	FinishReason string
	Usage        ai.Usage
	// ToolResults lists every tool call made, in order.
	ToolResults []ai.ToolResult
	ToolRounds  int
}

// Agent sends queries to a model and runs the tools it requests.
type Agent struct {
	client        chat.Client
	registry      *tool.Registry
	executor      *tool.Executor
	logger        *slog.Logger
	maxToolRounds int
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithExecutor replaces the default tool executor, for instance to attach
// a metrics observer.
func WithExecutor(e *tool.Executor) Option {
	return func(a *Agent) {
		a.executor = e
	}
}

// WithMaxToolRounds bounds tool calling. Zero disables tool execution.
func WithMaxToolRounds(n int) Option {
	return func(a *Agent) {
		a.maxToolRounds = n
	}
}

// New creates an Agent. registry may be nil when no tools are offered.
func New(client chat.Client, registry *tool.Registry, opts ...Option) *Agent {
	a := &Agent{
		client:        client,
		registry:      registry,
		logger:        slog.Default(),
		maxToolRounds: DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.executor == nil && registry != nil {
		a.executor = tool.NewExecutor(registry, tool.WithLogger(a.logger))
	}
	return a
}

// Query sends q and returns the final answer. Sampling parameters are
// validated first; out-of-range values fail with a user input error. When
// the model calls tools, they run through the executor and the model is
// asked again with the results.
func (a *Agent) Query(ctx context.Context, q Query) (*Result, error) {
	res := &Result{RequestID: ai.NewRequestID(ai.RequestPrefixLLM)}
	log := a.logger.With("request_id", res.RequestID)

	maxTokens := q.MaxTokens
	if maxTokens == 0 {
		maxTokens = ai.DefaultMaxTokens
	}
	if err := ai.ValidateSampling(maxTokens, q.Temperature, q.TopP); err != nil {
		return nil, err
	}

	var schemas []ai.ToolSchema
	if len(q.Tools) > 0 {
		if a.registry == nil {
			return nil, ai.NewUserInputError("agent: tools requested without a registry", 0, nil)
		}
		var err error
		if schemas, err = a.registry.Schemas(q.Tools...); err != nil {
			return nil, ai.NewUserInputError("agent: preparing tools", 0, err)
		}
	}

	events := q.Events
	if events == nil {
		events = event.FromContext(ctx)
	}

	log.Info("starting llm query",
		"json_response", q.JSON,
		"tools_requested", q.Tools,
		"message_count", len(q.Messages),
		"max_tokens", maxTokens,
	)

	base := []ai.Option{ai.WithMaxTokens(maxTokens)}
	if q.Model != "" {
		base = append(base, ai.WithModel(q.Model))
	}
	if q.Temperature != nil {
		base = append(base, ai.WithTemperature(*q.Temperature))
	}
	if q.TopP != nil {
		base = append(base, ai.WithTopP(*q.TopP))
	}
	if q.JSON {
		base = append(base, ai.WithJSON())
	}

	messages := append([]ai.Message(nil), q.Messages...)
	resp, err := a.client.Chat(ctx, messages, append(base, ai.WithTools(schemas...))...)
	if err != nil {
		return nil, a.queryFailed(log, err)
	}
	res.Usage = resp.Usage

	for resp.HasToolCalls() && res.ToolRounds < a.maxToolRounds && a.executor != nil {
		res.ToolRounds++
		log.Info("processing tool calls", "round", res.ToolRounds, "tool_call_count", len(resp.ToolCalls))

		batch := a.executor.ExecuteCalls(ctx, resp.ToolCalls, events)
		res.ToolResults = append(res.ToolResults, batch.Results...)
		messages = append(messages, resp.AssistantMessage())
		messages = append(messages, batch.Messages()...)

		// Tools stay on offer only while another round is allowed.
		opts := base
		if res.ToolRounds < a.maxToolRounds {
			opts = append(append([]ai.Option(nil), base...), ai.WithTools(schemas...))
		}
		if resp, err = a.client.Chat(ctx, messages, opts...); err != nil {
			return nil, a.queryFailed(log, err)
		}
		res.Usage = res.Usage.Add(resp.Usage)
	}

	res.Content = resp.Content
	res.FinishReason = resp.FinishReason
	emitMessage(events, res.RequestID, resp)

	log.Info("llm query completed",
		"finish_reason", res.FinishReason,
		"tool_rounds", res.ToolRounds,
		"input_tokens", res.Usage.InputTokens,
		"output_tokens", res.Usage.OutputTokens,
	)

	if !q.JSON {
		return res, nil
	}
	if res.Content == "" {
		return nil, &LLMError{Message: "LLM returned empty content for JSON response"}
	}
	if res.Data, err = CleanJSON(res.Content); err != nil {
		log.Error("json response could not be parsed", "error", err)
		return nil, err
	}
	return res, nil
}

func (a *Agent) queryFailed(log *slog.Logger, err error) error {
	log.Error("llm query failed", "error", err, "error_category", ai.CategoryOf(err))
	return &LLMError{Message: "failed to query LLM", Err: err}
}

func emitMessage(ch chan<- event.Event, requestID string, resp *ai.Response) {
	if ch == nil {
		return
	}
	id := ai.GenerateMessageID()
	event.Emit(ch, event.Event{Type: event.MessageStart, RunID: requestID, MessageID: id})
	if resp.Content != "" {
		event.Emit(ch, event.Event{Type: event.MessageDelta, RunID: requestID, MessageID: id, Delta: resp.Content})
	}
	event.Emit(ch, event.Event{Type: event.MessageEnd, RunID: requestID, MessageID: id, Response: resp})
}
