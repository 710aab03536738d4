package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/moneypilot/moneypilot/agent"
	"github.com/moneypilot/moneypilot/builtin"
	"github.com/moneypilot/moneypilot/client"
	"github.com/moneypilot/moneypilot/config"
	"github.com/moneypilot/moneypilot/internal/metrics"
	"github.com/moneypilot/moneypilot/mcp"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/moneypilot/moneypilot/workflow"
)

// app holds the wired components shared by every command.
type app struct {
	settings  *config.Settings
	logger    *slog.Logger
	metrics   *metrics.Collector
	llm       *client.Client // nil when no API key is configured
	tools     *tool.Registry
	workflows *workflow.Registry
	remotes   []*mcp.Remote
}

// newApp loads settings and wires the registries. Tools from MCP_SERVERS
// are discovered before the tool registry is sealed.
func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := settings.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	a := &app{
		settings:  settings,
		logger:    logger,
		metrics:   metrics.NewCollector(metrics.DefaultNamespace),
		tools:     tool.NewRegistry(logger),
		workflows: workflow.NewRegistry(logger),
	}

	sources := []tool.Source{builtin.Source()}
	for _, spec := range settings.MCPServers {
		remote, err := connectRemote(ctx, spec, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.remotes = append(a.remotes, remote)
		sources = append(sources, remote)
	}
	if err := a.tools.Discover(ctx, sources...); err != nil {
		a.Close()
		return nil, fmt.Errorf("discovering tools: %w", err)
	}

	var analyst *agent.Agent
	if settings.LLMConfigured() {
		a.llm, err = client.New(ctx, settings.ClientConfig(),
			client.WithLogger(logger),
			client.WithObserver(a.metrics),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
		executor := tool.NewExecutor(a.tools, tool.WithLogger(logger), tool.WithObserver(a.metrics))
		analyst = agent.New(a.llm, a.tools, agent.WithLogger(logger), agent.WithExecutor(executor))
	} else {
		logger.Info("LLM_API_KEY not set; LLM workflows disabled")
	}

	err = builtin.Register(a.workflows, a.tools, analyst,
		workflow.WithLogger(logger),
		workflow.WithObserver(a.metrics),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("configuration loaded", "features", settings.FeatureSummary(),
		"tools", a.tools.Len(), "workflows", a.workflows.Len())
	return a, nil
}

func connectRemote(ctx context.Context, spec string, logger *slog.Logger) (*mcp.Remote, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty MCP server command")
	}
	remote, err := mcp.ConnectStdio(ctx, fields[0], os.Environ(), fields[1:], mcp.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server %q: %w", spec, err)
	}
	logger.Info("connected to MCP server", "command", fields[0], "server", remote.Server())
	return remote, nil
}

// Close stops MCP server subprocesses.
func (a *app) Close() {
	for _, r := range a.remotes {
		if err := r.Close(); err != nil {
			a.logger.Warn("closing MCP server", "server", r.Server(), "error", err)
		}
	}
	a.remotes = nil
}
