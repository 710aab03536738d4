package tool

import (
	"context"

	ai "github.com/moneypilot/moneypilot"
)

// Tool is a named capability an agent can invoke with a JSON object of
// arguments.
type Tool interface {
	Schema() ai.ToolSchema
	Execute(ctx context.Context, args map[string]any) (any, error)
}

// HandlerFunc runs a tool on arguments already validated against its
// schema.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

type funcTool struct {
	schema ai.ToolSchema
	fn     HandlerFunc
}

func (t *funcTool) Schema() ai.ToolSchema { return t.schema }

func (t *funcTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	if err := Validate(t.schema, args); err != nil {
		return nil, err
	}
	return t.fn(ctx, args)
}

// New pairs a schema with an untyped handler. The tool checks arguments
// against schema before fn sees them.
func New(schema ai.ToolSchema, fn HandlerFunc) Tool {
	return &funcTool{schema: schema, fn: fn}
}

// Source supplies tools to Registry.Discover.
type Source interface {
	Tools(ctx context.Context) ([]Tool, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Tool, error)

func (f SourceFunc) Tools(ctx context.Context) ([]Tool, error) { return f(ctx) }

// Static is a Source offering a fixed set of tools.
func Static(tools ...Tool) Source {
	return SourceFunc(func(context.Context) ([]Tool, error) {
		return tools, nil
	})
}
