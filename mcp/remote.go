package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/tool"
)

// RemoteError is a tool failure reported by the MCP server.
type RemoteError struct {
	Tool    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("mcp: tool %s failed: %s", e.Tool, e.Message)
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithPrefix prepends prefix to every remote tool name, keeping tools
// from different servers apart in one registry.
func WithPrefix(prefix string) RemoteOption {
	return func(r *Remote) {
		r.prefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RemoteOption {
	return func(r *Remote) {
		if l != nil {
			r.logger = l
		}
	}
}

// Remote is a connection to an MCP server whose tools are used locally.
// It implements tool.Source.
type Remote struct {
	client *client.Client
	server string
	prefix string
	logger *slog.Logger
}

var _ tool.Source = (*Remote)(nil)

// ConnectStdio launches command as an MCP server subprocess and connects
// to it.
func ConnectStdio(ctx context.Context, command string, env []string, args []string, opts ...RemoteOption) (*Remote, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp: starting %s: %w", command, err)
	}
	return Connect(ctx, c, opts...)
}

// ConnectInProcess connects to a server running in this process.
func ConnectInProcess(ctx context.Context, s *server.MCPServer, opts ...RemoteOption) (*Remote, error) {
	c, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, fmt.Errorf("mcp: creating in-process client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: starting in-process client: %w", err)
	}
	return Connect(ctx, c, opts...)
}

// Connect initializes an MCP session on a started client. The client is
// closed if initialization fails.
func Connect(ctx context.Context, c *client.Client, opts ...RemoteOption) (*Remote, error) {
	r := &Remote{client: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	res, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "moneypilot",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("mcp: initializing session: %w", err)
	}
	r.server = res.ServerInfo.Name
	r.logger = r.logger.With("mcp_server", r.server)
	r.logger.Info("connected to mcp server", "version", res.ServerInfo.Version)
	return r, nil
}

// Server returns the name the server reported.
func (r *Remote) Server() string { return r.server }

// Close ends the session and stops any subprocess.
func (r *Remote) Close() error {
	return r.client.Close()
}

// Tools lists the server's tools as local tools that call back into the
// server.
func (r *Remote) Tools(ctx context.Context) ([]tool.Tool, error) {
	res, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp: listing tools of %s: %w", r.server, err)
	}

	tools := make([]tool.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema := ai.SchemaFromJSON(r.prefix+t.Name, t.Description, inputSchema(t))
		tools = append(tools, tool.New(schema, r.call(t.Name)))
	}
	r.logger.Debug("listed mcp tools", "count", len(tools))
	return tools, nil
}

func (r *Remote) call(name string) tool.HandlerFunc {
	return func(ctx context.Context, args map[string]any) (any, error) {
		res, err := r.client.CallTool(ctx, mcp.CallToolRequest{
			Params: mcp.CallToolParams{Name: name, Arguments: args},
		})
		if err != nil {
			return nil, fmt.Errorf("mcp: calling %s: %w", name, err)
		}

		text := resultText(res)
		if res.IsError {
			return nil, &RemoteError{Tool: name, Message: text}
		}

		// JSON results are decoded so the executor does not quote them twice.
		var v any
		if err := json.Unmarshal([]byte(text), &v); err == nil {
			return v, nil
		}
		return text, nil
	}
}

func inputSchema(t mcp.Tool) map[string]any {
	raw := []byte(t.RawInputSchema)
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(t.InputSchema); err != nil {
			return nil
		}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}
