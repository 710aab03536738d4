// Package chat defines the LLM client contract shared by the agent,
// workflow steps, and provider adapters.
//
// The [github.com/moneypilot/moneypilot/client.Client] type implements it.
package chat

import (
	"context"

	ai "github.com/moneypilot/moneypilot"
)

// Client sends a conversation and returns the model's complete response.
// Tool schemas go in through [ai.WithTools]; requested calls come back in
// [ai.Response.ToolCalls].
type Client interface {
	Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error)
}

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error)

// Chat calls f.
func (f Func) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	return f(ctx, messages, opts...)
}
